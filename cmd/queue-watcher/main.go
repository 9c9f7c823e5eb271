package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"booklister/internal/config"
	"booklister/internal/pipeline"
	"booklister/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	watcher := pipeline.NewWatcher(db, cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("watching %s every %ds\n", cfg.QueueDir, cfg.WatchIntervalSec)
	must(watcher.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
