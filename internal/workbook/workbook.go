package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"booklister/internal"
	"booklister/internal/listing"
)

// ErrSchemaMismatch marks a workbook whose header row cannot support the
// append: required columns are missing or the Title column is absent. It is
// fatal for the whole batch since there is no safe place to write.
var ErrSchemaMismatch = errors.New("workbook schema mismatch")

// headerSentinel identifies a header row that is not the sheet's first row.
const headerSentinel = "*Action("

// headerScanDepth bounds how far down the sheet the sentinel is looked for.
const headerScanDepth = 5

// Workbook wraps an open spreadsheet as a single-save transaction: rows are
// appended in memory and nothing touches disk until Save. A fatal error
// anywhere in a batch therefore leaves the file exactly as it was.
type Workbook struct {
	f         *excelize.File
	path      string
	sheet     string
	headers   []string
	headerRow int
	titleCol  int
}

// Open loads an existing workbook and validates its header row against the
// required column list. The header row is the sheet's first row unless an
// earlier row carries the File Exchange action sentinel.
func Open(path, sheet string, required []string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	w := &Workbook{f: f, path: path, sheet: sheet}
	if err := w.readHeaders(required); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Create builds a fresh workbook from a template: the header row on the
// template's sheet plus an INFO sheet recording the generation time. Nothing
// is written to disk until Save.
func Create(path string, tpl listing.Template) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), tpl.SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, header := range tpl.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(tpl.SheetName, cell, header); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if _, err := f.NewSheet("INFO"); err == nil {
		_ = f.SetCellValue("INFO", "A1", "Generated")
		_ = f.SetCellValue("INFO", "B1", time.Now().UTC().Format("2006-01-02T15:04:05"))
	}

	w := &Workbook{f: f, path: path, sheet: tpl.SheetName}
	if err := w.readHeaders(tpl.Required); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Workbook) readHeaders(required []string) error {
	found := false
	for _, name := range w.f.GetSheetList() {
		if name == w.sheet {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: workbook has no %q sheet", ErrSchemaMismatch, w.sheet)
	}

	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return err
	}

	w.headerRow = 1
	for i := 0; i < len(rows) && i < headerScanDepth; i++ {
		if len(rows[i]) > 0 && strings.HasPrefix(rows[i][0], headerSentinel) {
			w.headerRow = i + 1
			break
		}
	}

	if len(rows) < w.headerRow {
		return fmt.Errorf("%w: sheet %q has no header row", ErrSchemaMismatch, w.sheet)
	}
	w.headers = append([]string(nil), rows[w.headerRow-1]...)

	have := make(map[string]struct{}, len(w.headers))
	for _, h := range w.headers {
		have[h] = struct{}{}
	}
	var missing []string
	for _, h := range required {
		if _, ok := have[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		preview := missing
		if len(preview) > 5 {
			preview = preview[:5]
		}
		return fmt.Errorf("%w: missing columns %v", ErrSchemaMismatch, preview)
	}

	w.titleCol = 0
	for i, h := range w.headers {
		if h == "Title" {
			w.titleCol = i + 1
			break
		}
	}
	if w.titleCol == 0 {
		return fmt.Errorf("%w: header row has no Title column", ErrSchemaMismatch)
	}
	return nil
}

// Headers returns the sheet's header row in column order.
func (w *Workbook) Headers() []string {
	return append([]string(nil), w.headers...)
}

// Path returns the location Save will write to.
func (w *Workbook) Path() string {
	return w.path
}

// Append writes one normalized row into the first unoccupied row and returns
// its 1-based index. Occupancy is keyed on the Title column, and the scan
// runs past the sheet's nominal last row because cleared-but-not-deleted
// trailing rows leave the row count stale. Existing rows are never touched.
func (w *Workbook) Append(row internal.Row) (int, error) {
	target, err := w.nextFreeRow()
	if err != nil {
		return 0, err
	}

	for i, header := range w.headers {
		value, ok := row[header]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, target)
		if err != nil {
			return 0, err
		}
		if err := w.setCell(cell, header, value); err != nil {
			return 0, err
		}
	}
	return target, nil
}

func (w *Workbook) nextFreeRow() (int, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return 0, err
	}

	r := len(rows) + 1
	if r <= w.headerRow {
		r = w.headerRow + 1
	}
	for {
		cell, err := excelize.CoordinatesToCellName(w.titleCol, r)
		if err != nil {
			return 0, err
		}
		value, err := w.f.GetCellValue(w.sheet, cell)
		if err != nil {
			return 0, err
		}
		if value == "" {
			return r, nil
		}
		r++
	}
}

// setCell applies the column-aware coercion rules. Empty values leave the
// cell truly blank rather than holding an empty string; spreadsheet filters
// and formulas distinguish the two.
func (w *Workbook) setCell(cell, header string, value any) error {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok && s == "" {
		return nil
	}

	lower := strings.ToLower(header)
	if strings.HasSuffix(lower, "price") {
		if f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(value)), 64); err == nil {
			return w.f.SetCellValue(w.sheet, cell, f)
		}
	}
	if header == "Quantity" {
		if n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(value))); err == nil {
			return w.f.SetCellValue(w.sheet, cell, n)
		}
	}
	return w.f.SetCellValue(w.sheet, cell, value)
}

// Save persists the workbook exactly once, creating parent directories as
// needed. Callers invoke it after the whole batch has been appended.
func (w *Workbook) Save() error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return w.f.SaveAs(w.path)
}

// Close releases the underlying file without saving.
func (w *Workbook) Close() error {
	return w.f.Close()
}
