package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"booklister/internal"
	"booklister/internal/config"
	"booklister/internal/listing"
	"booklister/internal/storage"
	"booklister/internal/workbook"
)

// AppendService folds queued agent JSON outputs into the listings workbook.
type AppendService struct {
	db  *storage.DB
	cfg config.Config
	tpl listing.Template
}

func NewAppendService(db *storage.DB, cfg config.Config) *AppendService {
	tpl := listing.FileExchange(cfg.StartPrice)
	if cfg.TitleLimit > 0 {
		tpl.TruncateLimit = cfg.TitleLimit
	}
	if cfg.SheetName != "" {
		tpl.SheetName = cfg.SheetName
	}
	return &AppendService{db: db, cfg: cfg, tpl: tpl}
}

// Template exposes the configured File Exchange template.
func (s *AppendService) Template() listing.Template {
	return s.tpl
}

// ProcessQueue appends every JSON file in inputDir to the workbook, oldest
// first. Malformed payloads are skipped and reported; schema or resource
// problems abort before any mutation. The workbook is saved exactly once,
// after the whole batch, and only then are consumed inputs moved into the
// processed/ subdirectory. A failed move is logged but not fatal: the row is
// already saved, the input will simply be picked up (and duplicated) on the
// next run.
func (s *AppendService) ProcessQueue(inputDir, workbookPath string, overrides map[string]any) (internal.BatchReport, error) {
	report := internal.BatchReport{WorkbookPath: workbookPath}

	files, err := collectJSONFiles(inputDir)
	if err != nil {
		return report, err
	}
	if len(files) == 0 {
		fmt.Printf("no JSON files found in %s\n", inputDir)
		return report, nil
	}

	wb, err := workbook.Open(workbookPath, s.tpl.SheetName, s.tpl.Required)
	if err != nil {
		return report, err
	}
	defer wb.Close()

	for _, path := range files {
		name := filepath.Base(path)
		payload, err := listing.LoadPayload(path)
		if err != nil {
			report.Skipped = append(report.Skipped, internal.SkippedInput{Name: name, Reason: err.Error()})
			fmt.Printf("skipping %s: %v\n", name, err)
			continue
		}

		row := listing.BuildRow(s.tpl, payload, overrides)
		target, err := wb.Append(row)
		if err != nil {
			return report, err
		}
		report.Appended = append(report.Appended, path)
		fmt.Printf("appended %s -> row %d\n", name, target)
	}

	if len(report.Appended) == 0 {
		fmt.Println("no listings appended")
		return report, nil
	}

	if err := wb.Save(); err != nil {
		return report, err
	}

	s.moveProcessed(inputDir, report.Appended)
	s.recordRun(report)

	fmt.Printf("appended %d listing(s) to %s\n", len(report.Appended), workbookPath)
	return report, nil
}

func (s *AppendService) moveProcessed(inputDir string, consumed []string) {
	processedDir := filepath.Join(inputDir, s.cfg.ProcessedName)
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		fmt.Printf("warning: cannot create %s: %v\n", processedDir, err)
		return
	}
	for _, path := range consumed {
		dest := filepath.Join(processedDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			fmt.Printf("warning: failed to move %s: %v\n", filepath.Base(path), err)
		}
	}
}

func (s *AppendService) recordRun(report internal.BatchReport) {
	if s.db == nil {
		return
	}
	counts := map[string]int{
		"appended": len(report.Appended),
		"skipped":  len(report.Skipped),
	}
	if err := s.db.InsertRun("queue-append", counts, report.Skipped); err != nil {
		fmt.Printf("warning: run ledger write failed: %v\n", err)
	}
}

// collectJSONFiles returns the *.json files in dir ordered by modification
// time, oldest first, so listings land in the workbook in capture order.
func collectJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type candidate struct {
		path  string
		mtime time.Time
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, entry.Name()), mtime: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].mtime.Equal(found[j].mtime) {
			return found[i].path < found[j].path
		}
		return found[i].mtime.Before(found[j].mtime)
	})

	out := make([]string, 0, len(found))
	for _, c := range found {
		out = append(out, c.path)
	}
	return out, nil
}
