// Command chatwatcher runs the long-lived chat ingestion process: it keeps
// one chat network session open, indexes new messages as they arrive, and
// periodically reconciles every active room against the network's history.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dkoraitest/consultant-copilot/internal/chatingest"
	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/embedding"
	"github.com/dkoraitest/consultant-copilot/internal/entitygraph"
	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/objectstore"
	"github.com/dkoraitest/consultant-copilot/internal/store"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.GetLogger(context.Background()).Fatalf("load config: %v", err)
	}

	db, err := store.New(cfg.Database)
	if err != nil {
		logger.GetLogger(context.Background()).Fatalf("connect to database: %v", err)
	}

	embedder, err := embedding.New(cfg.Embedding, types.EmbeddingDimension)
	if err != nil {
		logger.GetLogger(context.Background()).Fatalf("build embedder: %v", err)
	}

	archive, err := objectstore.New(cfg.ObjectStorage)
	if err != nil {
		logger.GetLogger(context.Background()).Fatalf("build object storage: %v", err)
	}

	apiID, err := strconv.Atoi(cfg.ChatNetwork.APIID)
	if err != nil {
		logger.GetLogger(context.Background()).Fatalf("parse chat_network.api_id: %v", err)
	}
	session := chatingest.NewTelegramSession(apiID, cfg.ChatNetwork.APIHash, cfg.ChatNetwork.SessionString)

	var graph interfaces.EntityGraph
	if cfg.EntityGraph != nil && cfg.EntityGraph.Enabled {
		graph, err = entitygraph.New(cfg.EntityGraph.URI, cfg.EntityGraph.Username, cfg.EntityGraph.Password)
		if err != nil {
			logger.GetLogger(context.Background()).Fatalf("build entity graph: %v", err)
		}
	}

	ingestor := chatingest.New(db, session, embedder, archive, graph, cfg.ChatNetwork.ReconcileInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.GetLogger(ctx)
	log.Info("chatwatcher starting")
	if err := ingestor.Run(ctx); err != nil && ctx.Err() == nil {
		if errors.Is(err, chatingest.ErrAuthFailed) {
			log.Errorf("chatwatcher authorization failed: %v", err)
			os.Exit(2)
		}
		log.Errorf("chatwatcher exited with fatal error: %v", err)
		os.Exit(1)
	}
	log.Info("chatwatcher shut down cleanly")
}
