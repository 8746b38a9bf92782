// flexconvert rewrites leftover emitCommand(FlexibleCommandFactory::createX(...))
// call sites into emitJSON(buildJSON(...)) stubs for manual completion.
//
// Usage:
//
//	flexconvert file.cpp                    # writes file.cpp.converted
//	flexconvert -dry-run file.cpp           # show changes without writing
//	flexconvert -dir src                    # convert every source under src/
//	flexconvert -mappings extra.yaml file.cpp
//	flexconvert -list                       # list known commands
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/astinterp/flexconvert/internal/convert"
	"github.com/astinterp/flexconvert/internal/mapping"
)

func main() {
	os.Exit(run(os.Stdout, os.Args[1:]))
}

// run drives one invocation, writing all user-visible output to out, and
// returns the process exit code.
func run(out io.Writer, argv []string) int {
	fs := flag.NewFlagSet("flexconvert", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", "", "convert every C++/Arduino source under this directory")
	dryRun := fs.Bool("dry-run", false, "show changes without writing")
	mappings := fs.String("mappings", "", "YAML file with extra command mappings")
	list := fs.Bool("list", false, "list known commands and exit")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(argv); err != nil {
		return 1
	}

	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	args := fs.Args()
	if !*list && ((*dir == "" && len(args) != 1) || (*dir != "" && len(args) != 0)) {
		fmt.Fprintln(out, "Usage: flexconvert [-dry-run] [-mappings file.yaml] <input-file>")
		fmt.Fprintln(out, "       flexconvert [-dry-run] [-mappings file.yaml] -dir <directory>")
		return 1
	}

	table := mapping.Builtin()
	if *mappings != "" {
		var err error
		table, err = mapping.LoadOverlay(*mappings)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		slog.Debug("mappings loaded", "file", *mappings, "commands", table.Len())
	}

	if *list {
		printList(out, table)
		return 0
	}

	conv := convert.New(table)

	var err error
	if *dir != "" {
		err = runDir(out, conv, *dir, *dryRun)
	} else {
		err = runFile(out, conv, args[0], *dryRun)
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runFile(out io.Writer, conv *convert.Converter, path string, dryRun bool) error {
	if dryRun {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		_, changes := conv.Source(string(raw))
		printChanges(out, changes)
		fmt.Fprintf(out, "Converted %d FlexibleCommand calls\n", len(changes))
		fmt.Fprintln(out, "(dry-run, no files modified)")
		return nil
	}

	res, err := conv.File(path)
	if err != nil {
		return err
	}
	logChanges(path, res.Changes)

	fmt.Fprintf(out, "Converted %d FlexibleCommand calls\n", res.Converted())
	fmt.Fprintf(out, "Output written to: %s\n", res.OutputPath)
	return nil
}

func runDir(out io.Writer, conv *convert.Converter, dir string, dryRun bool) error {
	if dryRun {
		return dryRunDir(out, conv, dir)
	}

	results, err := conv.Dir(dir)
	if err != nil {
		return err
	}

	total := 0
	for _, res := range results {
		logChanges(res.Path, res.Changes)
		if res.Converted() == 0 {
			continue
		}
		total += res.Converted()
		fmt.Fprintf(out, "  %s: %d\n", res.Path, res.Converted())
	}

	fmt.Fprintf(out, "Converted %d FlexibleCommand calls in %d files\n", total, len(results))
	return nil
}

func dryRunDir(out io.Writer, conv *convert.Converter, dir string) error {
	results, err := conv.PreviewDir(dir)
	if err != nil {
		return err
	}

	total := 0
	for _, res := range results {
		if res.Converted() == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", res.Path)
		printChanges(out, res.Changes)
		total += res.Converted()
	}

	fmt.Fprintf(out, "Converted %d FlexibleCommand calls in %d files\n", total, len(results))
	fmt.Fprintln(out, "(dry-run, no files modified)")
	return nil
}

func printList(out io.Writer, table *mapping.Table) {
	fmt.Fprintf(out, "Known commands (%d):\n", table.Len())
	for _, name := range table.Names() {
		cmd, _ := table.Lookup(name)
		fmt.Fprintf(out, "  %-22s -> %s\n", name, cmd.Type)
	}
}

func printChanges(out io.Writer, changes []convert.Change) {
	for _, ch := range changes {
		if ch.Known {
			fmt.Fprintf(out, "  line %d: %s -> %s\n", ch.LineNum, ch.Name, ch.Type)
		} else {
			fmt.Fprintf(out, "  line %d: %s -> %s (unknown, needs fields)\n", ch.LineNum, ch.Name, ch.Type)
		}
	}
}

func logChanges(path string, changes []convert.Change) {
	for _, ch := range changes {
		slog.Debug("converted", "file", path, "line", ch.LineNum, "name", ch.Name, "type", ch.Type, "known", ch.Known)
	}
}
