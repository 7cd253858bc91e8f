package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"certdesk/internal/config"
	"certdesk/internal/filestore"
	"certdesk/internal/scheduler"
	"certdesk/internal/server"
	"certdesk/internal/storage"
	"certdesk/internal/storage/providers"
	httptransport "certdesk/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.InitDB(cfg.DatabaseUrl)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init file storage: %v", err)
	}

	allProviders := providers.New(db)
	scheduler.NewDocumentSweeper(allProviders.ResponseProvider, files, time.Hour).Start(ctx)

	router := httptransport.Router(allProviders, files, cfg)

	addr := ":" + cfg.Server.Port
	log.Printf("listening on %s", addr)
	if err := server.Start(ctx, addr, cfg.Server.AllowedOrigin, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newFileStore(ctx context.Context, cfg *config.Config) (filestore.FileStore, error) {
	if cfg.Storage.Driver == "s3" {
		return filestore.NewS3(ctx, filestore.S3Options{
			Region:    cfg.Storage.S3.Region,
			Bucket:    cfg.Storage.S3.Bucket,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
		})
	}
	return filestore.NewDisk(cfg.Storage.UploadsDir)
}
