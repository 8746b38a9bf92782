package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/astinterp/flexconvert/internal/mapping"
)

const sketchSrc = `void setup() {
  emitCommand(FlexibleCommandFactory::createSerialBegin(9600));
}

void loop() {
  emitCommand(FlexibleCommandFactory::createDelay(500));
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileWritesConverted(t *testing.T) {
	c := New(mapping.Builtin())
	path := filepath.Join(t.TempDir(), "sketch.ino")
	writeFile(t, path, sketchSrc)

	res, err := c.File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}

	if res.OutputPath != path+".converted" {
		t.Errorf("OutputPath = %q; want %q", res.OutputPath, path+".converted")
	}
	if res.Converted() != 2 {
		t.Errorf("Converted() = %d; want 2", res.Converted())
	}

	out, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want, _ := c.Source(sketchSrc)
	if string(out) != want {
		t.Errorf("output bytes = %q; want %q", out, want)
	}

	// Input must be untouched.
	in, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(in) != sketchSrc {
		t.Error("input file was modified")
	}
}

func TestFileDeterministic(t *testing.T) {
	c := New(mapping.Builtin())
	path := filepath.Join(t.TempDir(), "sketch.cpp")
	writeFile(t, path, sketchSrc)

	if _, err := c.File(path); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path + ".converted")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.File(path); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path + ".converted")
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Error("two runs produced different output bytes")
	}
}

func TestFileMissing(t *testing.T) {
	c := New(mapping.Builtin())
	if _, err := c.File(filepath.Join(t.TempDir(), "nope.cpp")); err == nil {
		t.Error("File(missing) = nil error; want error")
	}
}

func TestDirConvertsTree(t *testing.T) {
	c := New(mapping.Builtin())
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "main.cpp"), sketchSrc)
	writeFile(t, filepath.Join(root, "lib", "driver.ino"), sketchSrc)
	writeFile(t, filepath.Join(root, "README.txt"), "emitCommand(FlexibleCommandFactory::createDelay(1));\n")
	writeFile(t, filepath.Join(root, "old.cpp.converted"), "stale\n")

	results, err := c.Dir(root)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("len(results) = %d; want 2 (txt and .converted skipped)", len(results))
	}

	// Sorted by path.
	if results[0].Path >= results[1].Path {
		t.Errorf("results not sorted: %q, %q", results[0].Path, results[1].Path)
	}

	for _, res := range results {
		if res.Converted() != 2 {
			t.Errorf("%s: Converted() = %d; want 2", res.Path, res.Converted())
		}

		got, err := os.ReadFile(res.OutputPath)
		if err != nil {
			t.Fatalf("reading %s: %v", res.OutputPath, err)
		}
		want, _ := c.Source(sketchSrc)
		if string(got) != want {
			t.Errorf("%s: batch output differs from single-file conversion", res.Path)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "README.txt.converted")); !os.IsNotExist(err) {
		t.Error("non-source file was converted")
	}
}

func TestPreviewDirWritesNothing(t *testing.T) {
	c := New(mapping.Builtin())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.cpp"), sketchSrc)

	results, err := c.PreviewDir(root)
	if err != nil {
		t.Fatalf("PreviewDir: %v", err)
	}

	if len(results) != 1 || results[0].Converted() != 2 {
		t.Fatalf("results = %+v; want one file with 2 conversions", results)
	}

	if _, err := os.Stat(filepath.Join(root, "main.cpp.converted")); !os.IsNotExist(err) {
		t.Error("preview wrote a .converted file")
	}
}
