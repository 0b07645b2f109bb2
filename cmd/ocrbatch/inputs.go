package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// expandInputs resolves command line arguments to PDF paths. Directories
// contribute their top-level *.pdf files in name order; files are taken as
// given so that a bad path is reported per document instead of aborting.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read input directory %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}
