package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"booklister/internal"
	"booklister/internal/listing"
)

const sampleAgentOutput = `12.99 ||| <h2>Nice Book</h2><ul><li>Title: The Duck Compendium</li><li>Author: Carl Barks</li></ul> ||| 5000`

func TestLoadAgentText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ducks.txt")
	if err := os.WriteFile(path, []byte(sampleAgentOutput+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadAgentText(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != "12.99" || got.ConditionID != "5000" {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(got.DescriptionHTML, "The Duck Compendium") {
		t.Fatalf("html = %q", got.DescriptionHTML)
	}

	if err := os.WriteFile(path, []byte("only two ||| parts"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAgentText(path); err == nil {
		t.Fatal("expected format error")
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uploaded_urls.txt")
	if err := os.WriteFile(path, []byte("https://a/1.jpg, https://a/2.jpg\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	urls, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if urls != "https://a/1.jpg, https://a/2.jpg" {
		t.Fatalf("urls = %q", urls)
	}

	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("empty manifest must be an error")
	}
}

func TestBuildTextRow(t *testing.T) {
	tpl := listing.Compact()
	agentText := internal.AgentText{
		Price:           "12.99",
		DescriptionHTML: `<ul><li>Title: The Duck Compendium</li><li>Author: Carl Barks</li></ul>`,
		ConditionID:     "5000",
	}

	row := BuildTextRow(tpl, agentText, "https://a/1.jpg, https://a/2.jpg")

	if row["Title"] != "The Duck Compendium" || row["C:Book Title"] != "The Duck Compendium" {
		t.Fatalf("title = %v / %v", row["Title"], row["C:Book Title"])
	}
	if row["C:Author"] != "Carl Barks" {
		t.Fatalf("author = %v", row["C:Author"])
	}
	if row["Start price"] != "12.99" || row["Condition ID"] != "5000" {
		t.Fatalf("price/condition = %v / %v", row["Start price"], row["Condition ID"])
	}
	if row["Item photo URL"] != "https://a/1.jpg, https://a/2.jpg" {
		t.Fatalf("photo url = %v", row["Item photo URL"])
	}
	if row["Quantity"] != "1" || row[listing.ActionHeader] != "Add" {
		t.Fatalf("defaults missing: %v / %v", row["Quantity"], row[listing.ActionHeader])
	}
}

func TestBuildTextRowFallsBackToPlaceholderTitle(t *testing.T) {
	tpl := listing.Compact()
	row := BuildTextRow(tpl, internal.AgentText{DescriptionHTML: "<p>no detail list</p>"}, "https://a/1.jpg")
	if row["Title"] != "Untitled Listing" {
		t.Fatalf("title = %v", row["Title"])
	}
}

func TestBuildTextRowTruncatesLongTitles(t *testing.T) {
	tpl := listing.Compact()
	long := strings.Repeat("Very Long Title ", 8)
	row := BuildTextRow(tpl, internal.AgentText{
		DescriptionHTML: "<ul><li>Title: " + long + "</li></ul>",
	}, "https://a/1.jpg")

	title, _ := row["Title"].(string)
	if len([]rune(title)) > tpl.TruncateLimit || !strings.HasSuffix(title, "...") {
		t.Fatalf("title = %q", title)
	}
}

func TestProcessFolders(t *testing.T) {
	cfg := testConfig(t)
	cfg.ImageRoot = t.TempDir()
	cfg.ResultsDir = t.TempDir()
	outputDir := t.TempDir()

	for _, folder := range []string{"ducks", "whales"} {
		dir := filepath.Join(cfg.ImageRoot, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, cfg.URLManifest), []byte("https://a/"+folder+"-01.jpg"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Only ducks has an agent result; whales must be skipped.
	if err := os.WriteFile(filepath.Join(cfg.ResultsDir, "ducks.txt"), []byte(sampleAgentOutput), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewBatchBookService(nil, cfg)
	report, err := svc.ProcessFolders(nil, outputDir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Appended) != 1 || report.Appended[0] != "ducks" {
		t.Fatalf("appended = %v", report.Appended)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Name != "whales" {
		t.Fatalf("skipped = %+v", report.Skipped)
	}

	matches, err := filepath.Glob(filepath.Join(outputDir, "ebay-upl-*.xlsx"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("workbook glob: %v %v", matches, err)
	}
	if matches[0] != report.WorkbookPath {
		t.Fatalf("report path %q, glob %q", report.WorkbookPath, matches[0])
	}

	f, err := excelize.OpenFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Listings", "D2"); v != "The Duck Compendium" {
		t.Fatalf("title = %q", v)
	}
	if v, _ := f.GetCellValue("Listings", "G2"); v != "https://a/ducks-01.jpg" {
		t.Fatalf("photo url = %q", v)
	}
}

func TestProcessFoldersAppendExisting(t *testing.T) {
	cfg := testConfig(t)
	cfg.ImageRoot = t.TempDir()
	cfg.ResultsDir = t.TempDir()
	outputDir := t.TempDir()

	dir := filepath.Join(cfg.ImageRoot, "ducks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, cfg.URLManifest), []byte("https://a/ducks-01.jpg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.ResultsDir, "ducks.txt"), []byte(sampleAgentOutput), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewBatchBookService(nil, cfg)
	first, err := svc.ProcessFolders(nil, outputDir, false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ProcessFolders(nil, outputDir, true)
	if err != nil {
		t.Fatal(err)
	}
	if second.WorkbookPath != first.WorkbookPath {
		t.Fatalf("append used %q, want %q", second.WorkbookPath, first.WorkbookPath)
	}

	f, err := excelize.OpenFile(first.WorkbookPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Listings", "D3"); v != "The Duck Compendium" {
		t.Fatalf("second row title = %q", v)
	}
}

func TestProcessFoldersAppendWithoutExistingWorkbook(t *testing.T) {
	cfg := testConfig(t)
	cfg.ImageRoot = t.TempDir()

	svc := NewBatchBookService(nil, cfg)
	if _, err := svc.ProcessFolders([]string{"ducks"}, t.TempDir(), true); err == nil {
		t.Fatal("expected error when no workbook exists to append to")
	}
}
