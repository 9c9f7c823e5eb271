package pipeline

import (
	"context"
	"fmt"
	"time"

	"booklister/internal/config"
	"booklister/internal/storage"
)

// Watcher polls the queue directory and folds any waiting JSON files into
// the listings workbook. One cycle is one ProcessQueue batch; cycle errors
// are logged and the loop keeps going.
type Watcher struct {
	svc *AppendService
	cfg config.Config
}

func NewWatcher(db *storage.DB, cfg config.Config) *Watcher {
	return &Watcher{svc: NewAppendService(db, cfg), cfg: cfg}
}

func (w *Watcher) Run(ctx context.Context) error {
	interval := time.Duration(w.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	for {
		if err := w.runCycle(); err != nil {
			fmt.Printf("watch cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (w *Watcher) runCycle() error {
	files, err := collectJSONFiles(w.cfg.QueueDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	report, err := w.svc.ProcessQueue(w.cfg.QueueDir, w.cfg.WorkbookPath, nil)
	if err != nil {
		return err
	}
	fmt.Printf("watch cycle done appended=%d skipped=%d\n", len(report.Appended), len(report.Skipped))
	return nil
}
