package main

import (
	"fmt"
	"os"
	"time"

	"otodom-pipeline/config"
	"otodom-pipeline/geo"
	"otodom-pipeline/models"
	"otodom-pipeline/nlp"
	"otodom-pipeline/scraper/otodom"
	"otodom-pipeline/services"
	"otodom-pipeline/storage"
	"otodom-pipeline/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Warsaw rental pipeline starting ===")
	logger.Info("Config: master=%s | cutoff=%s | reference year=%d | only expired=%v",
		cfg.MasterCSVPath, cfg.AddedCutoffDate, cfg.ReferenceYear, cfg.OnlyExpired)

	master, err := storage.ReadMaster(cfg.MasterCSVPath)
	if err != nil {
		logger.Error("Failed to load master dataset: %v", err)
		os.Exit(1)
	}
	logger.Info("Master dataset loaded: %d records", len(master))

	if cfg.ScrapeEnabled {
		master = runScrape(cfg, logger, master)
	}

	dedup, err := services.NewDeduplicator(logger, cfg.AddedCutoffDate)
	if err != nil {
		logger.Error("Bad deduplicator config: %v", err)
		os.Exit(1)
	}

	canonical, err := dedup.Deduplicate(master)
	if err != nil {
		logger.Error("Deduplication failed: %v", err)
		os.Exit(1)
	}

	if err := storage.WriteMaster(cfg.MasterCSVPath, canonical); err != nil {
		logger.Error("Failed to write master snapshot: %v", err)
		os.Exit(1)
	}

	transformer := services.NewTransformer(logger, services.TransformOptions{
		OnlyExpired:        cfg.OnlyExpired,
		DurationStart:      cfg.DurationStart,
		DurationEnd:        cfg.DurationEnd,
		ReferenceYear:      cfg.ReferenceYear,
		Subway:             loadIndex(logger, cfg.StopsCSVPath, "subway stops"),
		Comparables:        loadIndex(logger, cfg.LegacyCSVPath, "comparable listings"),
		ComparableRadiusKm: cfg.ComparableRadiusKm,
		Matcher:            pickMatcher(cfg),
	})

	features, err := transformer.Transform(canonical)
	if err != nil {
		logger.Error("Feature derivation failed: %v", err)
		os.Exit(1)
	}

	imputer := services.NewImputer(logger)
	if err := imputer.Impute(features); err != nil {
		logger.Error("Imputation failed: %v", err)
		os.Exit(1)
	}

	if err := storage.WriteFeatures(cfg.FeatureCSVPath, features); err != nil {
		logger.Error("Failed to write feature table: %v", err)
		os.Exit(1)
	}
	logger.Info("Feature table saved to %s (%d rows)", cfg.FeatureCSVPath, len(features))

	if pgWriter, err := storage.NewPostgresWriter(cfg.DSN()); err != nil {
		logger.Warn("PostgreSQL unavailable, keeping CSV snapshot only: %v", err)
	} else {
		defer pgWriter.Close()
		if err := pgWriter.Write(features); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Feature table stored in PostgreSQL (table: listing_features)")
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(features))

	logger.Info("Run finished with %d data-quality warnings", logger.Warnings())
	fmt.Printf("  Done. Master → %s | Features → %s\n\n", cfg.MasterCSVPath, cfg.FeatureCSVPath)
}

// runScrape collects a fresh otodom batch, archives it raw, and appends the
// prepared records that are not yet part of the master dataset.
func runScrape(cfg *config.Config, logger *utils.Logger, master []*models.Record) []*models.Record {
	known := make([]string, 0, len(master))
	knownSet := make(map[string]struct{}, len(master))
	for _, r := range master {
		known = append(known, r.Link)
		knownSet[r.Link] = struct{}{}
	}

	scraper := otodom.New(cfg, logger)
	batch, err := scraper.Scrape(known)
	if err != nil {
		logger.Error("Scrape failed, continuing with existing master: %v", err)
		return master
	}
	if len(batch) == 0 {
		logger.Warn("Scrape returned no new observations")
	} else {
		batchPath := storage.BatchPath(cfg.RawBatchDir, cfg.RawBatchPrefix, time.Now())
		if rawWriter, err := storage.NewRawCSVWriter(batchPath); err != nil {
			logger.Error("Failed to create raw batch file: %v", err)
		} else {
			if err := rawWriter.WriteRaw(batch); err != nil {
				logger.Error("Raw batch write failed: %v", err)
			}
			_ = rawWriter.Close()
			logger.Info("Raw batch archived to %s", batchPath)
		}

		preparer := services.NewPreparer(logger)
		appended := 0
		for _, rec := range preparer.Prepare(batch) {
			if _, exists := knownSet[rec.Link]; exists {
				continue
			}
			master = append(master, rec)
			appended++
		}
		logger.Info("Appended %d new records to master", appended)
	}

	// sweep the still-active listings for ones that have gone offline
	var active []string
	for _, r := range master {
		if r.Expired == 0 {
			active = append(active, r.Link)
		}
	}
	gone := scraper.CheckExpired(active)
	lifecycle := services.NewLifecycleFilter(logger)
	lifecycle.MarkExpired(master, gone, time.Now().Format("02.01.2006"))

	return master
}

func loadIndex(logger *utils.Logger, path, what string) *geo.Index {
	if path == "" {
		return nil
	}
	points, err := storage.LoadReferencePoints(path)
	if err != nil {
		logger.Warn("No %s index (%v), related features will be missing", what, err)
		return nil
	}
	logger.Info("Loaded %d %s", len(points), what)
	return geo.NewIndex(points)
}

func pickMatcher(cfg *config.Config) nlp.KeywordMatcher {
	if cfg.UseKeywordMatcher {
		return nlp.FoldingMatcher{}
	}
	return nlp.Disabled{}
}
