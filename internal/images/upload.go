package images

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"booklister/internal/storage"
)

// UploadService renames and uploads per-folder image sets and writes each
// folder's URL manifest for later workbook builds.
type UploadService struct {
	store        ObjectStore
	db           *storage.DB
	bucket       string
	prefix       string
	manifestName string
}

func NewUploadService(store ObjectStore, db *storage.DB, bucket, prefix, manifestName string) *UploadService {
	return &UploadService{store: store, db: db, bucket: bucket, prefix: prefix, manifestName: manifestName}
}

// UploadRoot processes every folder under root. Per-file failures are
// logged and skipped; a folder with no JPGs is reported and passed over.
func (s *UploadService) UploadRoot(ctx context.Context, root string, dryRun bool) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("image root %s: %w", root, err)
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)

	for _, folder := range folders {
		fmt.Printf("processing %s...\n", folder)
		if err := s.UploadFolder(ctx, filepath.Join(root, folder), dryRun); err != nil {
			fmt.Printf("skipping %s: %v\n", folder, err)
		}
	}
	return nil
}

// UploadFolder renames the folder's JPGs sequentially, uploads them
// public-read under prefix/<folder>/<name>, and writes the comma-separated
// URL manifest the batch workbook builder consumes.
func (s *UploadService) UploadFolder(ctx context.Context, dir string, dryRun bool) error {
	files, err := RenameSequential(dir, dryRun)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("%s: no JPG files to process\n", filepath.Base(dir))
		return nil
	}

	folder := filepath.Base(dir)
	region := s.store.Region()
	uploaded := 0
	urls := make([]string, 0, len(files))

	for _, path := range files {
		key := s.objectKey(folder, filepath.Base(path))
		url := PublicURL(s.bucket, region, key)

		if dryRun {
			fmt.Printf("upload (dry-run): %s -> s3://%s/%s\n", filepath.Base(path), s.bucket, key)
			urls = append(urls, url)
			continue
		}

		if err := s.putFile(ctx, path, key); err != nil {
			fmt.Printf("failed to upload %s: %v\n", filepath.Base(path), err)
			continue
		}
		urls = append(urls, url)
		uploaded++
		fmt.Printf("uploaded %s -> %s\n", filepath.Base(path), url)

		if s.db != nil {
			if err := s.db.RecordUpload(folder, filepath.Base(path), url); err != nil {
				fmt.Printf("warning: upload ledger write failed: %v\n", err)
			}
		}
	}

	if dryRun {
		fmt.Printf("%s: generated %d URL(s) (dry-run)\n", folder, len(urls))
		return nil
	}
	if len(urls) == 0 {
		return fmt.Errorf("no files uploaded from %s", folder)
	}

	manifest := filepath.Join(dir, s.manifestName)
	if err := os.WriteFile(manifest, []byte(strings.Join(urls, ", ")), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	fmt.Printf("%s: %d file(s) uploaded, wrote %s\n", folder, uploaded, s.manifestName)
	return nil
}

func (s *UploadService) objectKey(folder, filename string) string {
	parts := make([]string, 0, 3)
	if s.prefix != "" {
		parts = append(parts, strings.Trim(s.prefix, "/"))
	}
	parts = append(parts, folder, filename)
	return strings.Join(parts, "/")
}

func (s *UploadService) putFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	return s.store.Put(ctx, s.bucket, key, contentType, f)
}
