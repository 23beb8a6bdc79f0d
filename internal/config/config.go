// Package config loads service configuration from the environment, with an
// optional .env file for local development. Nothing here is a global: the
// loaded Config is passed into constructors explicitly.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// GCP
	ProjectID string
	DatasetID string
	Bucket    string

	// HTTP
	Port string

	// Notion export (optional; sync is skipped when empty)
	NotionToken      string
	NotionDatabaseID string
}

// Load reads a .env file if present and then the process environment.
// ProjectID is the only hard requirement; everything else has a default or
// is optional.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ProjectID:        os.Getenv("GCP_PROJECT"),
		DatasetID:        getEnv("BQ_DATASET", "momo"),
		Bucket:           os.Getenv("GCS_BUCKET"),
		Port:             getEnv("PORT", "8080"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}

	if cfg.ProjectID == "" {
		return Config{}, fmt.Errorf("config.Load: GCP_PROJECT is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
