package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"booklister/internal/listing"
	"booklister/internal/workbook"
)

// NewestJSON resolves the payload for a one-shot generation: an explicit
// file is used as-is, a directory yields its most recently modified *.json.
func NewestJSON(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("json source %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}

	type candidate struct {
		path string
		mod  int64
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(path, entry.Name()), mod: fi.ModTime().UnixNano()})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no JSON files found in %s", path)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mod > found[j].mod })
	return found[0].path, nil
}

// Generate builds a brand-new workbook containing the header row plus a
// single listing derived from one JSON payload. Unlike the queue path,
// failures here are fatal: there is exactly one item.
func Generate(jsonPath, outputPath string, tpl listing.Template, overrides map[string]any) error {
	payload, err := listing.LoadPayload(jsonPath)
	if err != nil {
		return err
	}

	wb, err := workbook.Create(outputPath, tpl)
	if err != nil {
		return err
	}
	defer wb.Close()

	row := listing.BuildRow(tpl, payload, overrides)
	if _, err := wb.Append(row); err != nil {
		return err
	}
	return wb.Save()
}
