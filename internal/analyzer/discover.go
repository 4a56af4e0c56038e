package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// File is one discovered corpus file: its absolute path and its path
// relative to the root it was found under. RelPath is what reports and
// storage reference, so runs against different checkout locations stay
// comparable.
type File struct {
	Path    string
	RelPath string
}

// Discover walks the given roots and returns every problem file,
// deduplicated and sorted by relative path. A missing root is a fatal
// error: analyzing a partial corpus would publish misleading counts.
func Discover(roots []string) ([]File, error) {
	if len(roots) == 0 {
		return nil, types.ErrNoRoots
	}

	seen := map[string]bool{}
	var files []File
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("corpus root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("corpus root %s: not a directory", root)
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if strings.HasPrefix(info.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".pg") {
				return nil
			}
			if seen[path] {
				return nil
			}
			seen[path] = true
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			files = append(files, File{Path: path, RelPath: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
