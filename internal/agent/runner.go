package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"booklister/internal"
	"booklister/internal/storage"
)

// BatchRunner walks the image root and produces one identification JSON per
// folder.
type BatchRunner struct {
	client *Client
	db     *storage.DB
}

func NewBatchRunner(client *Client, db *storage.DB) *BatchRunner {
	return &BatchRunner{client: client, db: db}
}

// Run identifies every folder under imageRoot and writes
// <outputDir>/<folder>.json. Model and I/O failures skip the folder and the
// batch keeps going; the report carries both outcomes.
func (r *BatchRunner) Run(ctx context.Context, imageRoot, outputDir string) (internal.BatchReport, error) {
	entries, err := os.ReadDir(imageRoot)
	if err != nil {
		return internal.BatchReport{}, fmt.Errorf("image root %s: %w", imageRoot, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return internal.BatchReport{}, err
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)

	report := internal.BatchReport{}
	for _, folder := range folders {
		if err := r.runFolder(ctx, imageRoot, outputDir, folder); err != nil {
			report.Skipped = append(report.Skipped, internal.SkippedInput{Name: folder, Reason: err.Error()})
			fmt.Printf("skipping %s: %v\n", folder, err)
			continue
		}
		report.Appended = append(report.Appended, folder)
		fmt.Printf("identified %s\n", folder)
	}

	if r.db != nil {
		counts := map[string]int{"identified": len(report.Appended), "skipped": len(report.Skipped)}
		if err := r.db.InsertRun("identify", counts, report.Skipped); err != nil {
			fmt.Printf("warning: run ledger write failed: %v\n", err)
		}
	}
	return report, nil
}

func (r *BatchRunner) runFolder(ctx context.Context, imageRoot, outputDir, folder string) error {
	images, err := CollectImages(filepath.Join(imageRoot, folder))
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no images in %s", folder)
	}

	reply, err := r.client.Identify(ctx, images)
	if err != nil {
		return err
	}

	payload := ParseReply(reply)
	blob, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, folder+".json"), blob, 0o644)
}
