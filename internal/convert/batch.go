package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// sourceExts are the file extensions batch mode picks up.
var sourceExts = map[string]bool{
	".cpp": true,
	".cc":  true,
	".h":   true,
	".hpp": true,
	".ino": true,
}

// collectSources lists every C++/Arduino source file under root, skipping
// previous .converted outputs.
func collectSources(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".converted") {
			return nil
		}
		if !sourceExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// Dir converts every C++/Arduino source under root, each to its own
// <path>.converted file. Files are independent, so they are converted
// concurrently; each single file is still processed sequentially, and the
// bytes written per file match a single-file run exactly.
func (c *Converter) Dir(root string) ([]Result, error) {
	paths, err := collectSources(root)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []Result
	)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			res, err := c.File(path)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// PreviewDir converts every source under root in memory, writing nothing.
func (c *Converter) PreviewDir(root string) ([]Result, error) {
	paths, err := collectSources(root)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		_, changes := c.Source(string(raw))
		results = append(results, Result{Path: path, Changes: changes})
	}

	return results, nil
}
