package main

import (
	"fmt"
	"log"

	"cfdibox/internal/archive"
	"cfdibox/internal/batch"
	"cfdibox/internal/cfdi"
	"cfdibox/internal/config"
	"cfdibox/internal/handler"
	"cfdibox/internal/port"
	"cfdibox/internal/router"
	"cfdibox/internal/service"
	fsstorage "cfdibox/internal/storage/fs"
	s3storage "cfdibox/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Build the extraction pipeline from the configured policies
	extractor := cfdi.NewExtractor(
		cfdi.TaxPolicyFromConfig(cfg.Tax),
		cfdi.DeductPolicyFromConfig(cfg.Deduct),
	)
	processor := batch.NewProcessor(extractor, cfg.Batch.Concurrency, cfg.Batch.DocTimeout())

	// Optional source-document archival
	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		var storage port.ObjectStorage
		switch cfg.Archive.Backend {
		case "s3":
			storage, err = s3storage.NewS3Client(&cfg.Archive.S3)
			if err != nil {
				return fmt.Errorf("failed to initialize S3 client: %w", err)
			}
			archiver = archive.NewArchiver(storage, cfg.Archive.S3.Bucket)
		default:
			storage = fsstorage.NewFSClient(cfg.Archive.Root)
			archiver = archive.NewArchiver(storage, "")
		}
	}

	// Initialize services and handlers
	batchSvc := service.NewBatchService(processor, archiver)
	batchH := handler.NewBatchHandler(batchSvc)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(cfg, batchH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
