package storage

import (
	"path/filepath"
	"testing"

	"booklister/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)

	skips := []internal.SkippedInput{{Name: "broken.json", Reason: "malformed"}}
	if err := db.InsertRun("queue-append", map[string]int{"appended": 2, "skipped": 1}, skips); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertRun("identify", map[string]int{"identified": 1}, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d", len(runs))
	}
	// Newest first.
	if runs[0].Kind != "identify" || runs[1].Kind != "queue-append" {
		t.Fatalf("order: %s, %s", runs[0].Kind, runs[1].Kind)
	}
	if runs[1].Counts["appended"] != 2 || runs[1].Counts["skipped"] != 1 {
		t.Fatalf("counts = %v", runs[1].Counts)
	}

	limited, err := db.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("len = %d", len(limited))
	}
}

func TestRecordUploadUpserts(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordUpload("ducks", "ducks-01.jpg", "https://a/old.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordUpload("ducks", "ducks-01.jpg", "https://a/new.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordUpload("ducks", "ducks-02.jpg", "https://a/2.jpg"); err != nil {
		t.Fatal(err)
	}

	urls, err := db.UploadedURLs("ducks")
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 {
		t.Fatalf("len = %d", len(urls))
	}
	if urls["ducks-01.jpg"] != "https://a/new.jpg" {
		t.Fatalf("url = %q", urls["ducks-01.jpg"])
	}

	other, err := db.UploadedURLs("whales")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("len = %d", len(other))
	}
}
