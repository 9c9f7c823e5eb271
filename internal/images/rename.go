package images

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListJPGs returns the JPG/JPEG files in dir sorted by name.
func ListJPGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg":
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// RenameSequential renames a folder's JPGs to <folder>-01.jpg, <folder>-02.jpg,
// … in name order, so the eBay gallery sequence matches the shooting order.
// Files already carrying their target name are left alone. Returns the final
// paths; with dryRun the plan is printed and nothing is touched.
func RenameSequential(dir string, dryRun bool) ([]string, error) {
	jpgs, err := ListJPGs(dir)
	if err != nil {
		return nil, err
	}

	folder := filepath.Base(dir)
	renamed := make([]string, 0, len(jpgs))
	for i, path := range jpgs {
		ext := strings.ToLower(filepath.Ext(path))
		target := filepath.Join(dir, fmt.Sprintf("%s-%02d%s", folder, i+1, ext))
		if path == target {
			renamed = append(renamed, target)
			continue
		}
		fmt.Printf("rename: %s -> %s\n", filepath.Base(path), filepath.Base(target))
		if !dryRun {
			if err := os.Rename(path, target); err != nil {
				return nil, err
			}
		}
		renamed = append(renamed, target)
	}
	return renamed, nil
}
