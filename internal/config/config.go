package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	QueueDir     string
	JSONOutDir   string
	ResultsDir   string
	ImageRoot    string
	OutputDir    string
	WorkbookPath string
	SheetName    string

	StartPrice    string
	TitleLimit    int
	CompactLimit  int
	URLManifest   string
	ProcessedName string

	GeminiAPIKey string
	// GeminiModel overrides the model named in the agent YAML when set.
	GeminiModel     string
	GeminiTimeoutMs int
	AgentConfigPath string

	S3Bucket string
	S3Region string
	S3Prefix string

	WatchIntervalSec int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		QueueDir:     getEnv("QUEUE_DIR", filepath.Join(cwd, "queue-JSONs-to-excel")),
		JSONOutDir:   getEnv("JSON_OUT_DIR", filepath.Join(cwd, "outputs-JSON")),
		ResultsDir:   getEnv("RESULTS_DIR", filepath.Join(cwd, "batch-JSON-results")),
		ImageRoot:    getEnv("IMAGE_ROOT", filepath.Join(cwd, "batch-image-sets")),
		OutputDir:    getEnv("OUTPUT_DIR", cwd),
		WorkbookPath: getEnv("WORKBOOK_PATH", filepath.Join(cwd, "ebay-auto-listings.xlsx")),
		SheetName:    getEnv("SHEET_NAME", "Listings"),

		StartPrice:    getEnv("START_PRICE", "5.00"),
		TitleLimit:    getEnvInt("TITLE_LIMIT", 50),
		CompactLimit:  getEnvInt("COMPACT_TITLE_LIMIT", 60),
		URLManifest:   getEnv("URL_MANIFEST", "uploaded_urls.txt"),
		ProcessedName: getEnv("PROCESSED_DIR_NAME", "processed"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", ""),
		GeminiTimeoutMs: getEnvInt("GEMINI_TIMEOUT_MS", 120000),
		AgentConfigPath: getEnv("AGENT_CONFIG", filepath.Join(cwd, "book-id-agent.yaml")),

		S3Bucket: getEnv("S3_BUCKET", ""),
		S3Region: getEnv("S3_REGION", ""),
		S3Prefix: getEnv("S3_PREFIX", ""),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
