package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/config"
	"github.com/remodela/remodela-backend/internal/embedding"
	"github.com/remodela/remodela-backend/internal/ingest"
	"github.com/remodela/remodela-backend/internal/store/qdrant"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	docStore, err := qdrant.New(cfg.Qdrant, cfg.Retrieval.NumCandidates, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to document store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder := embedding.NewClient(cfg.Embedding)
	ingestor := ingest.NewIngestor(docStore, embedder, cfg.Embedding, cfg.Data, log)

	if err := ingestor.Run(ctx, ingest.DefaultJobs(cfg.Data.Dir)); err != nil {
		log.WithError(err).Fatal("Ingestion failed")
	}

	log.Info("Ingestion complete")
}
