package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"booklister/internal/agent"
	"booklister/internal/config"
	"booklister/internal/images"
	"booklister/internal/listing"
	"booklister/internal/pipeline"
	"booklister/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "queue:append":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.QueueDir, "directory of queued JSON files")
		book := fs.String("workbook", cfg.WorkbookPath, "listings workbook path")
		collect := overrideFlags(fs)
		_ = fs.Parse(os.Args[2:])

		svc := pipeline.NewAppendService(db, cfg)
		report, err := svc.ProcessQueue(*input, *book, collect())
		must(err)
		fmt.Printf("queue done appended=%d skipped=%d\n", len(report.Appended), len(report.Skipped))
	case "workbook:new":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		jsonPath := fs.String("json", cfg.JSONOutDir, "JSON file, or directory to take the newest from")
		output := fs.String("output", cfg.WorkbookPath, "destination workbook path")
		collect := overrideFlags(fs)
		_ = fs.Parse(os.Args[2:])

		source, err := pipeline.NewestJSON(*jsonPath)
		must(err)

		// The one-shot generator mirrors the full title; truncation only
		// applies on the queue path.
		tpl := listing.FileExchange(cfg.StartPrice)
		tpl.TruncateLimit = 0
		must(pipeline.Generate(source, *output, tpl, collect()))
		fmt.Printf("wrote %s using %s\n", *output, source)
	case "batch:workbook":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		folders := fs.String("folders", "", "comma-separated folder names (default: all under image root)")
		output := fs.String("output", cfg.OutputDir, "output directory for the workbook")
		appendExisting := fs.Bool("append", false, "append to the newest existing ebay-upl-*.xlsx")
		_ = fs.Parse(os.Args[2:])

		svc := pipeline.NewBatchBookService(db, cfg)
		report, err := svc.ProcessFolders(splitList(*folders), *output, *appendExisting)
		must(err)
		for _, folder := range report.Appended {
			fmt.Printf(" - %s\n", folder)
		}
	case "identify":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		imageDir := fs.String("images", "", "directory of photographs for one book")
		agentPath := fs.String("config", cfg.AgentConfigPath, "agent YAML definition")
		out := fs.String("out", cfg.JSONOutDir, "directory for the JSON response")
		_ = fs.Parse(os.Args[2:])

		agentCfg, err := agent.LoadConfig(*agentPath)
		must(err)
		if cfg.GeminiModel != "" {
			agentCfg.Model.Type = cfg.GeminiModel
		}
		dir := *imageDir
		if dir == "" {
			dir = agentCfg.ImageDir
		}
		if dir == "" {
			must(fmt.Errorf("--images is required (or set image_dir in the agent config)"))
		}

		must(cfg.Require("GEMINI_API_KEY", cfg.GeminiAPIKey))
		ctx := context.Background()
		client, err := agent.NewClient(ctx, cfg.GeminiAPIKey, agentCfg, geminiTimeout(cfg))
		must(err)
		blobs, err := agent.CollectImages(dir)
		must(err)
		reply, err := client.Identify(ctx, blobs)
		must(err)
		fmt.Println(reply)
		path, err := agent.SaveReply(*out, reply)
		must(err)
		fmt.Printf("saved response to %s\n", path)
	case "identify:batch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		root := fs.String("root", cfg.ImageRoot, "root directory of per-book image folders")
		agentPath := fs.String("config", cfg.AgentConfigPath, "agent YAML definition")
		out := fs.String("out", cfg.ResultsDir, "directory for per-folder JSON results")
		_ = fs.Parse(os.Args[2:])

		agentCfg, err := agent.LoadConfig(*agentPath)
		must(err)
		if cfg.GeminiModel != "" {
			agentCfg.Model.Type = cfg.GeminiModel
		}
		must(cfg.Require("GEMINI_API_KEY", cfg.GeminiAPIKey))
		ctx := context.Background()
		client, err := agent.NewClient(ctx, cfg.GeminiAPIKey, agentCfg, geminiTimeout(cfg))
		must(err)
		runner := agent.NewBatchRunner(client, db)
		report, err := runner.Run(ctx, *root, *out)
		must(err)
		fmt.Printf("identify batch done identified=%d skipped=%d\n", len(report.Appended), len(report.Skipped))
	case "images:upload":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		bucket := fs.String("bucket", cfg.S3Bucket, "target S3 bucket")
		root := fs.String("root", cfg.ImageRoot, "root directory of per-book image folders")
		prefix := fs.String("prefix", cfg.S3Prefix, "optional key prefix")
		dryRun := fs.Bool("dry-run", false, "print the plan without renaming or uploading")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("S3_BUCKET", *bucket))

		ctx := context.Background()
		store, err := images.NewS3Store(ctx, cfg.S3Region)
		must(err)
		svc := images.NewUploadService(store, db, *bucket, *prefix, cfg.URLManifest)
		must(svc.UploadRoot(ctx, *root, *dryRun))
	case "queue:watch":
		watcher := pipeline.NewWatcher(db, cfg)
		must(watcher.Run(context.Background()))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max entries")
		_ = fs.Parse(os.Args[2:])

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%s  %-16s %v\n", run.CreatedAt, run.Kind, run.Counts)
		}
	default:
		usage()
		os.Exit(1)
	}
}

// overrideFlags registers the per-listing override flags and returns a
// collector yielding only the flags the caller actually set, keyed by
// workbook column.
func overrideFlags(fs *flag.FlagSet) func() map[string]any {
	startPrice := fs.String("start-price", "", "start price to apply")
	quantity := fs.Int("quantity", 0, "quantity available")
	condition := fs.String("condition-id", "", "eBay condition code")
	category := fs.String("category-id", "", "override category ID")
	title := fs.String("title", "", "override listing title")
	imageURL := fs.String("image-url", "", "primary image URL")
	location := fs.String("location", "", "item location (city, state)")
	shipping := fs.String("shipping-profile", "", "business policy name")
	returns := fs.String("return-profile", "", "business policy name")
	payment := fs.String("payment-profile", "", "business policy name")

	columns := map[string]func() any{
		"start-price":      func() any { return *startPrice },
		"quantity":         func() any { return *quantity },
		"condition-id":     func() any { return *condition },
		"category-id":      func() any { return *category },
		"title":            func() any { return *title },
		"image-url":        func() any { return *imageURL },
		"location":         func() any { return *location },
		"shipping-profile": func() any { return *shipping },
		"return-profile":   func() any { return *returns },
		"payment-profile":  func() any { return *payment },
	}
	names := map[string]string{
		"start-price":      "Start price",
		"quantity":         "Quantity",
		"condition-id":     "Condition ID",
		"category-id":      "Category ID",
		"title":            "Title",
		"image-url":        "Item photo URL",
		"location":         "Location",
		"shipping-profile": "Shipping profile name",
		"return-profile":   "Return profile name",
		"payment-profile":  "Payment profile name",
	}

	return func() map[string]any {
		overrides := map[string]any{}
		fs.Visit(func(f *flag.Flag) {
			get, ok := columns[f.Name]
			if !ok {
				return
			}
			overrides[names[f.Name]] = get()
		})
		return overrides
	}
}

func geminiTimeout(cfg config.Config) time.Duration {
	return time.Duration(cfg.GeminiTimeoutMs) * time.Millisecond
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func usage() {
	fmt.Println("usage: booklister <command>")
	fmt.Println("commands:")
	fmt.Println("  identify --images=dir [--config=agent.yaml] [--out=outputs-JSON]")
	fmt.Println("  identify:batch [--root=batch-image-sets] [--out=batch-JSON-results]")
	fmt.Println("  images:upload --bucket=name [--root=batch-image-sets] [--prefix=books] [--dry-run]")
	fmt.Println("  workbook:new [--json=outputs-JSON] [--output=ebay-auto-listings.xlsx] [overrides]")
	fmt.Println("  queue:append [--input=queue-JSONs-to-excel] [--workbook=...xlsx] [overrides]")
	fmt.Println("  batch:workbook [--folders=a,b] [--output=dir] [--append]")
	fmt.Println("  queue:watch")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("overrides: --start-price --quantity --condition-id --category-id --title")
	fmt.Println("           --image-url --location --shipping-profile --return-profile --payment-profile")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
