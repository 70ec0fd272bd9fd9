// Package container wires every component's concrete dependencies together
// with go.uber.org/dig: provide every constructor once, then invoke against
// the fully resolved graph.
package container

import (
	"github.com/panjf2000/ants/v2"
	"go.uber.org/dig"

	"github.com/dkoraitest/consultant-copilot/internal/chunker"
	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/embedding"
	"github.com/dkoraitest/consultant-copilot/internal/entitygraph"
	"github.com/dkoraitest/consultant-copilot/internal/genmodel"
	"github.com/dkoraitest/consultant-copilot/internal/handler"
	"github.com/dkoraitest/consultant-copilot/internal/jobs"
	"github.com/dkoraitest/consultant-copilot/internal/keywordindex"
	"github.com/dkoraitest/consultant-copilot/internal/objectstore"
	"github.com/dkoraitest/consultant-copilot/internal/retrieval"
	"github.com/dkoraitest/consultant-copilot/internal/router"
	"github.com/dkoraitest/consultant-copilot/internal/settingcache"
	"github.com/dkoraitest/consultant-copilot/internal/store"
	"github.com/dkoraitest/consultant-copilot/internal/transcript"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// Build registers every provider the HTTP server needs and returns the
// populated container. Callers invoke router.New against it to obtain the
// configured gin engine.
func Build(c *dig.Container) *dig.Container {
	must(c.Provide(config.LoadConfig))
	must(c.Provide(initStore))
	must(c.Provide(storeAsInterface))
	must(c.Provide(initEmbedder))
	must(c.Provide(initGenerativeModel))
	must(c.Provide(initChunker))
	must(c.Provide(initObjectStorage))
	must(c.Provide(initSettingCache))
	must(c.Provide(initEntityGraph))
	must(c.Provide(initAntsPool))
	must(c.Provide(initKeywordIndex))
	must(c.Provide(initJobsClient))
	must(c.Provide(initTranscriptIngestor, dig.As(new(handler.TranscriptIngestor), new(jobs.Indexer))))
	must(c.Provide(initJobsServer))
	must(c.Provide(initRetrievalEngine, dig.As(new(handler.AskEngine))))

	must(c.Provide(handler.NewRAGHandler))
	must(c.Provide(handler.NewCRUDHandler))
	must(c.Provide(initExtrasHandler))
	must(c.Provide(router.New))

	return c
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func initStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.Database)
}

func storeAsInterface(s *store.Store) interfaces.Store { return s }

func initEmbedder(cfg *config.Config) (interfaces.Embedder, error) {
	return embedding.New(cfg.Embedding, types.EmbeddingDimension)
}

func initGenerativeModel(cfg *config.Config) (interfaces.GenerativeModel, error) {
	return genmodel.New(cfg.Generative)
}

func initChunker() interfaces.Chunker {
	return chunker.New()
}

func initObjectStorage(cfg *config.Config) (interfaces.ObjectStorage, error) {
	return objectstore.New(cfg.ObjectStorage)
}

func initSettingCache(cfg *config.Config) (interfaces.SettingCache, error) {
	return settingcache.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
}

// initEntityGraph returns a nil interfaces.EntityGraph when the graph mirror
// is not configured; transcript ingestion treats a nil graph as disabled.
func initEntityGraph(cfg *config.Config) (interfaces.EntityGraph, error) {
	if cfg.EntityGraph == nil || !cfg.EntityGraph.Enabled {
		return nil, nil
	}
	return entitygraph.New(cfg.EntityGraph.URI, cfg.EntityGraph.Username, cfg.EntityGraph.Password)
}

func initAntsPool() (*ants.Pool, error) {
	return ants.NewPool(2)
}

func initKeywordIndex(cfg *config.Config) (interfaces.KeywordIndex, error) {
	if cfg.KeywordIndex == nil || !cfg.KeywordIndex.Enabled || len(cfg.KeywordIndex.URLs) == 0 {
		return nil, nil
	}
	return keywordindex.New(cfg.KeywordIndex.URLs[0], cfg.KeywordIndex.Index)
}

func initJobsClient(cfg *config.Config) *jobs.Client {
	return jobs.NewClient(cfg.Redis)
}

func initTranscriptIngestor(cfg *config.Config, s *store.Store, embedder interfaces.Embedder,
	chnk interfaces.Chunker, dispatcher *jobs.Client, archive interfaces.ObjectStorage, graph interfaces.EntityGraph,
) *transcript.Ingestor {
	provider := transcript.NewProvider(cfg.Transcript.GraphQLURL, cfg.Transcript.APIToken, cfg.Transcript.Timeout)
	return transcript.NewIngestor(s, provider, chnk, embedder,
		cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap, cfg.Transcript.LargeTranscriptThreshold, dispatcher,
		archive, graph)
}

// initJobsServer builds the asynq worker that drains the large-transcript
// indexing queue; cmd/server runs it alongside the HTTP listener.
func initJobsServer(cfg *config.Config, indexer jobs.Indexer) *jobs.Server {
	return jobs.NewServer(cfg.Redis, 0, indexer)
}

func initRetrievalEngine(s *store.Store, embedder interfaces.Embedder, model interfaces.GenerativeModel,
	keywords interfaces.KeywordIndex, settings interfaces.SettingCache, pool *ants.Pool,
) *retrieval.Engine {
	return retrieval.New(s, embedder, model, keywords, settings, pool)
}

func initExtrasHandler(s *store.Store) *handler.ExtrasHandler {
	return handler.NewExtrasHandler(s)
}
