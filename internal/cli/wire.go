package cli

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ppiankov/claimwatch/internal/cache"
	"github.com/ppiankov/claimwatch/internal/classify"
	"github.com/ppiankov/claimwatch/internal/evidence"
	"github.com/ppiankov/claimwatch/internal/fetch"
	"github.com/ppiankov/claimwatch/internal/llm"
	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/pipeline"
	"github.com/ppiankov/claimwatch/internal/score"
	"github.com/ppiankov/claimwatch/internal/similarity"
	"github.com/ppiankov/claimwatch/internal/social"
	"github.com/ppiankov/claimwatch/internal/store"
	"github.com/ppiankov/claimwatch/internal/tracker"
	"github.com/ppiankov/claimwatch/internal/util"
	"github.com/ppiankov/claimwatch/internal/worker"
)

// app is the composed set of components every command draws from
type app struct {
	cfg        *model.Config
	logger     *log.Logger
	cache      cache.Cache
	client     *fetch.Client
	aggregator *evidence.Aggregator
	provider   llm.Provider
	pipeline   *pipeline.Pipeline
	batch      *worker.BatchProcessor
	social     *social.Registry
	tracker    *tracker.Tracker
}

// newApp builds every component from cfg. Missing optional credentials disable the
// capability with a warning; a configuration that cannot work is an error.
func newApp(cfg *model.Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	a.cache = c

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	a.client = fetch.NewClient(cfg.HTTP, limiter)

	sources, err := evidence.NewSources(cfg.Sources, cfg.Authority, a.client, a.cache, cfg.Cache.MemoryTTL)
	if err != nil {
		return nil, fmt.Errorf("evidence sources: %w", err)
	}
	a.aggregator = evidence.NewAggregator(sources, cfg.Sources.Timeout, logger)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.AI, cfg.HTTP))
	switch {
	case errors.Is(err, model.ErrMissingCredentials):
		logger.Printf("warning: AI scoring disabled: %v", err)
	case err != nil:
		return nil, fmt.Errorf("ai provider: %w", err)
	default:
		a.provider = llm.NewCachedProvider(provider, a.cache, cfg.Cache.MemoryTTL)
	}

	embedders := func() (similarity.Embedder, error) {
		e, err := llm.NewEmbedder(cfg.Similarity, cfg.HTTP)
		if err != nil {
			return nil, err
		}
		return e, nil
	}

	opts := pipeline.Options{
		Classifier: classify.New(cfg.Scoring.ClassifierBaseline),
		Validator:  a.aggregator,
		Comparator: similarity.New(cfg.Similarity, embedders, logger),
		Scorer:     score.NewScorer(score.PolicyFromConfig(cfg.Scoring)),
		Workers:    cfg.Batch.Workers,
		Logger:     logger,
	}
	if a.provider != nil {
		opts.AI = a.provider
	}
	a.pipeline = pipeline.New(opts)
	a.batch = worker.NewBatchProcessor(a.pipeline, cfg.Batch.GroupSize, cfg.Batch.GroupDelay)

	a.social = newSocial(cfg, a.client, logger)
	a.tracker = tracker.New(tracker.Options{
		Repo:     store.NewMemoryRepository(),
		Scorer:   a.pipeline,
		Social:   a.social,
		Research: store.NewResearchSettings(cfg.Research),
		Limit:    cfg.Social.Limit,
		Logger:   logger,
	})
	return a, nil
}

func newSocial(cfg *model.Config, client *fetch.Client, logger *log.Logger) *social.Registry {
	var sources []social.Source
	for _, name := range cfg.Social.Platforms {
		switch name {
		case "twitter":
			tw, err := social.NewTwitter(client, cfg.Social.TwitterURL, cfg.Social.TwitterToken, logger)
			if err != nil {
				logger.Printf("warning: twitter disabled: %v", err)
				continue
			}
			sources = append(sources, tw)
		case "youtube":
			sources = append(sources, social.NewYouTube(client, cfg.Social.YouTubeURL, logger))
		case "feed":
			var robots *util.RobotsChecker
			if cfg.Social.RespectRobots {
				robots = util.NewRobotsChecker(client.UserAgent(), cfg.HTTP.Timeout)
			}
			sources = append(sources, social.NewFeed(client, robots, logger))
		default:
			logger.Printf("warning: unknown social platform %q ignored", name)
		}
	}
	return social.NewRegistry(logger, sources...)
}

// Close releases backend connections
func (a *app) Close() error {
	if closer, ok := a.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func aiLabel(a *app) string {
	if name := a.pipeline.AIName(); name != "" {
		return name
	}
	return "disabled"
}
