package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/niyonkuru/momo-tracker/internal/config"
	"github.com/niyonkuru/momo-tracker/internal/engine"
	"github.com/niyonkuru/momo-tracker/internal/gcs"
	infraBQ "github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
	"github.com/niyonkuru/momo-tracker/internal/ingest"
	"github.com/niyonkuru/momo-tracker/internal/logger"
	"github.com/niyonkuru/momo-tracker/internal/smsxml"
)

func main() {
	log := logger.New()

	gcsURI := flag.String("gcs-uri", "", "GCS URI of the SMS export XML (e.g. gs://bucket/sms.xml)")
	file := flag.String("file", "", "Local SMS export XML to extract without persisting (dry run)")
	flag.Parse()

	if *gcsURI == "" && *file == "" {
		log.Fatal().Msg("Error: either --gcs-uri or --file is required")
	}
	if *gcsURI != "" && *file != "" {
		log.Fatal().Msg("Error: --gcs-uri and --file are mutually exclusive")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to read export file")
		}

		msgs, err := smsxml.DecodeBytes(data)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to decode export")
		}

		eng := engine.New(engine.DefaultRules(), engine.WithLogger(log))
		result, err := eng.Run(msgs)
		if err != nil {
			log.Fatal().Err(err).Msg("Extraction failed")
		}

		printStats(result.Stats)
		fmt.Println("Dry run completed, nothing persisted.")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	infraBQ.Configure(cfg.ProjectID, cfg.DatasetID)

	repo, err := infraBQ.NewBigQueryExportRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	svc := ingest.NewService(repo, gcs.NewClient())

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	exportID, err := svc.RegisterExport(ctx, *gcsURI, gcs.FilenameFromURI(*gcsURI), "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register export")
	}

	stats, err := svc.IngestExport(ctx, exportID, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	printStats(stats)
	fmt.Println("Ingestion completed successfully.")
}

func printStats(stats engine.Stats) {
	fmt.Printf("Messages:      %d\n", stats.Total)
	fmt.Printf("Classified:    %d\n", stats.Classified)
	fmt.Printf("Unrecognized:  %d\n", stats.Unrecognized)
	fmt.Printf("Duplicates:    %d\n", stats.Duplicates)

	kinds := make([]string, 0, len(stats.ByKind))
	for kind := range stats.ByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-28s %d\n", kind, stats.ByKind[engine.Kind(kind)])
	}
}
