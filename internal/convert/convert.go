// Package convert rewrites FlexibleCommandFactory call sites into generic
// buildJSON stubs. It works on raw text lines, one at a time; nothing about
// the surrounding C++ is parsed.
package convert

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/astinterp/flexconvert/internal/mapping"
)

// callPattern matches one FlexibleCommand constructor call:
//
//	emitCommand(FlexibleCommandFactory::createDelay(500));
//
// Captures the command name and the raw argument text. Non-greedy args stop
// at the first "));", so only the first call on a line is considered.
var callPattern = regexp.MustCompile(`emitCommand\(FlexibleCommandFactory::create(\w+)\((.*?)\)\);`)

// indentPattern captures leading whitespace.
var indentPattern = regexp.MustCompile(`^\s*`)

// Converter rewrites lines using a fixed command table.
type Converter struct {
	table *mapping.Table
}

// New returns a Converter backed by the given table.
func New(table *mapping.Table) *Converter {
	return &Converter{table: table}
}

// Change records one converted line.
type Change struct {
	LineNum int    // 1-based
	Name    string // original FlexibleCommand name
	Type    string // emitted JSON type
	Known   bool   // false → "TODO: Add fields" stub
}

// Line converts a single source line. Lines without a FlexibleCommand call
// pass through unchanged; callers detect conversion by comparing the result
// against the input.
func (c *Converter) Line(line string) string {
	out, _ := c.convertLine(line)
	return out
}

// convertLine does the work of Line and reports what was converted.
// The line's terminator (LF or CRLF, possibly absent) is preserved as is.
func (c *Converter) convertLine(line string) (string, *Change) {
	content, eol := splitEOL(line)

	m := callPattern.FindStringSubmatch(content)
	if m == nil {
		return line, nil
	}
	name := m[1]

	cmd, ok := c.table.Lookup(name)
	if !ok {
		// Unknown command: swap just the call text, leave the rest of the
		// line alone, and tag it for manual field mapping.
		stub := fmt.Sprintf(`emitJSON(buildJSON(%q, {})); // TODO: Add fields`, strings.ToUpper(name))
		return strings.ReplaceAll(content, m[0], stub) + eol,
			&Change{Name: name, Type: strings.ToUpper(name)}
	}

	// Known command: the whole line is replaced by an empty-payload stub.
	// Argument translation is deliberately left to manual follow-up.
	indent := indentPattern.FindString(content)
	out := fmt.Sprintf(`%semitJSON(buildJSON(%q, {})); // Converted from %s`, indent, cmd.Type, name)
	return out + eol, &Change{Name: name, Type: cmd.Type, Known: true}
}

// splitEOL separates a line's content from its terminator bytes.
func splitEOL(line string) (content, eol string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

// Source converts a whole file's content and reports every changed line.
// Unmatched lines are copied through byte for byte.
func (c *Converter) Source(content string) (string, []Change) {
	lines := strings.SplitAfter(content, "\n")

	var b strings.Builder
	b.Grow(len(content))
	var changes []Change

	for i, line := range lines {
		out, ch := c.convertLine(line)
		if ch != nil && out != line {
			ch.LineNum = i + 1
			changes = append(changes, *ch)
		}
		b.WriteString(out)
	}

	return b.String(), changes
}

// Result summarizes one file conversion.
type Result struct {
	Path       string
	OutputPath string
	Changes    []Change
}

// Converted returns the number of lines that changed.
func (r Result) Converted() int {
	return len(r.Changes)
}

// File converts path and writes the result to path+".converted". The input
// is read fully before conversion begins; the output file is not rolled back
// if writing fails partway.
func (c *Converter) File(path string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}

	converted, changes := c.Source(string(raw))
	outPath := path + ".converted"

	if err := os.WriteFile(outPath, []byte(converted), 0o644); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", outPath, err)
	}

	return Result{Path: path, OutputPath: outPath, Changes: changes}, nil
}
