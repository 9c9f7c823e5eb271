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

// BatchBookService builds a compact upload workbook from text-mode agent
// outputs (`price ||| html ||| condition`) and per-folder URL manifests.
type BatchBookService struct {
	db  *storage.DB
	cfg config.Config
	tpl listing.Template
}

func NewBatchBookService(db *storage.DB, cfg config.Config) *BatchBookService {
	tpl := listing.Compact()
	if cfg.CompactLimit > 0 {
		tpl.TruncateLimit = cfg.CompactLimit
	}
	return &BatchBookService{db: db, cfg: cfg, tpl: tpl}
}

// ProcessFolders builds one row per folder and writes them all to a single
// timestamped workbook (or appends to the newest existing one). Per-folder
// failures are reported and skipped; the run fails only when no folder
// yields a row or the destination workbook is unusable.
func (s *BatchBookService) ProcessFolders(folders []string, outputDir string, appendExisting bool) (internal.BatchReport, error) {
	report := internal.BatchReport{}

	if len(folders) == 0 {
		var err error
		folders, err = listImageFolders(s.cfg.ImageRoot)
		if err != nil {
			return report, err
		}
	}
	sort.Strings(folders)
	if len(folders) == 0 {
		fmt.Println("no folders to process")
		return report, nil
	}

	wb, err := s.prepareWorkbook(outputDir, appendExisting)
	if err != nil {
		return report, err
	}
	defer wb.Close()
	report.WorkbookPath = wb.Path()

	for _, folder := range folders {
		row, err := s.buildFolderRow(folder)
		if err != nil {
			report.Skipped = append(report.Skipped, internal.SkippedInput{Name: folder, Reason: err.Error()})
			fmt.Printf("skipping %s: %v\n", folder, err)
			continue
		}
		if _, err := wb.Append(row); err != nil {
			return report, err
		}
		report.Appended = append(report.Appended, folder)
	}

	if len(report.Appended) == 0 {
		fmt.Println("no valid rows generated")
		return report, nil
	}

	if err := wb.Save(); err != nil {
		return report, err
	}

	if s.db != nil {
		counts := map[string]int{"appended": len(report.Appended), "skipped": len(report.Skipped)}
		if err := s.db.InsertRun("batch-workbook", counts, report.Skipped); err != nil {
			fmt.Printf("warning: run ledger write failed: %v\n", err)
		}
	}

	fmt.Printf("wrote %d row(s) to %s\n", len(report.Appended), filepath.Base(report.WorkbookPath))
	return report, nil
}

func (s *BatchBookService) prepareWorkbook(outputDir string, appendExisting bool) (*workbook.Workbook, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	if appendExisting {
		matches, err := filepath.Glob(filepath.Join(outputDir, "ebay-upl-*.xlsx"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("append requested but no existing ebay-upl-*.xlsx in %s", outputDir)
		}
		sort.Strings(matches)
		return workbook.Open(matches[len(matches)-1], s.tpl.SheetName, s.tpl.Required)
	}

	name := fmt.Sprintf("ebay-upl-%s.xlsx", time.Now().Format("01-02-15-04"))
	return workbook.Create(filepath.Join(outputDir, name), s.tpl)
}

func (s *BatchBookService) buildFolderRow(folder string) (internal.Row, error) {
	agentText, err := LoadAgentText(filepath.Join(s.cfg.ResultsDir, folder+".txt"))
	if err != nil {
		return nil, err
	}
	imageURLs, err := LoadManifest(filepath.Join(s.cfg.ImageRoot, folder, s.cfg.URLManifest))
	if err != nil {
		return nil, err
	}
	return BuildTextRow(s.tpl, agentText, imageURLs), nil
}

// BuildTextRow normalizes one text-mode agent output into a compact row.
// Author and book title come out of the description HTML; the listing title
// is the book title (or a placeholder) bounded by the template's limit.
func BuildTextRow(tpl listing.Template, agentText internal.AgentText, imageURLs string) internal.Row {
	meta := listing.ExtractBookMeta(agentText.DescriptionHTML)

	title := meta.Title
	if title == "" {
		title = "Untitled Listing"
	}

	overrides := map[string]any{
		"Title":          listing.Truncate(title, tpl.TruncateLimit),
		"Start price":    agentText.Price,
		"Condition ID":   agentText.ConditionID,
		"Description":    agentText.DescriptionHTML,
		"Item photo URL": imageURLs,
		"C:Author":       meta.Author,
		"C:Book Title":   meta.Title,
	}
	return listing.BuildRow(tpl, internal.Payload{}, overrides)
}

// LoadAgentText parses a `price ||| html ||| condition` agent output file.
func LoadAgentText(path string) (internal.AgentText, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.AgentText{}, fmt.Errorf("agent output %s: %w", path, err)
	}

	parts := strings.Split(strings.TrimSpace(string(blob)), " ||| ")
	if len(parts) != 3 {
		return internal.AgentText{}, fmt.Errorf("unexpected agent output format in %s", filepath.Base(path))
	}
	return internal.AgentText{
		Price:           strings.TrimSpace(parts[0]),
		DescriptionHTML: strings.TrimSpace(parts[1]),
		ConditionID:     strings.TrimSpace(parts[2]),
	}, nil
}

// LoadManifest reads an uploaded_urls.txt manifest; an empty manifest is an
// error since the listing would publish with no photos.
func LoadManifest(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("url manifest %s: %w", path, err)
	}
	content := strings.TrimSpace(string(blob))
	if content == "" {
		return "", fmt.Errorf("url manifest is empty: %s", path)
	}
	return content, nil
}

func listImageFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("image root %s: %w", root, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, entry.Name())
		}
	}
	return out, nil
}
