// Package api serves the claimwatch HTTP API.
package api

import (
	"context"
	"errors"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/tracker"
	"github.com/ppiankov/claimwatch/internal/worker"
)

const (
	// DefaultMaxBatch caps the claims accepted by one batch request
	DefaultMaxBatch = 500
	// maxClaimBytes is the body allowance per claim when sizing batch requests
	maxClaimBytes = 4 << 10
)

// Analyzer scores a single claim against the named evidence sources
type Analyzer interface {
	AnalyzeWithSources(ctx context.Context, claim string, sources []string) (*model.ScoredClaim, error)
}

// Batcher runs claims through the batch orchestrator
type Batcher interface {
	ProcessBatch(ctx context.Context, claims []string) []*worker.ClaimResult
}

// Options configures a Server
type Options struct {
	Tracker      *tracker.Tracker
	Analyzer     Analyzer
	Batch        Batcher
	AllowOrigins []string
	MaxBatch     int
	MaxBodyBytes int64 // Batch request body cap; default MaxBatch * 4 KiB
	Logger       *log.Logger
}

// Server holds the API handlers and router
type Server struct {
	tracker   *tracker.Tracker
	analyzer  Analyzer
	batch     Batcher
	maxBatch  int
	maxBody   int64
	sanitizer *bluemonday.Policy
	logger    *log.Logger
	engine    *gin.Engine
}

// New creates the server and attaches every route
func New(opts Options) *Server {
	s := &Server{
		tracker:   opts.Tracker,
		analyzer:  opts.Analyzer,
		batch:     opts.Batch,
		maxBatch:  opts.MaxBatch,
		maxBody:   opts.MaxBodyBytes,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    opts.Logger,
	}
	if s.maxBatch <= 0 {
		s.maxBatch = DefaultMaxBatch
	}
	if s.maxBody <= 0 {
		s.maxBody = int64(s.maxBatch) * maxClaimBytes
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	g := gin.New()
	g.Use(gin.LoggerWithWriter(s.logger.Writer()), gin.Recovery())
	g.Use(cors.New(corsConfig(opts.AllowOrigins)))
	s.attachRoutes(g)
	s.engine = g
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) attachRoutes(g *gin.Engine) {
	g.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := g.Group("/api")
	{
		api.POST("/influencers", s.addInfluencer)
		api.GET("/influencers", s.listInfluencers)
		api.GET("/influencers/:id", s.getInfluencer)
		api.POST("/influencers/:id/scan", s.scanInfluencer)
		api.POST("/influencers/:id/analyze", s.analyzeInfluencer)

		api.POST("/claims", s.addClaim)
		api.GET("/claims/:influencer_id", s.listClaims)

		api.GET("/analyze", s.analyze)
		api.POST("/batch-process", s.batchProcess)

		api.GET("/stats", s.stats)
		api.GET("/analytics/report", s.analytics)
		api.GET("/dashboard/leaderboard", s.leaderboard)
		api.GET("/dashboard/influencer/:id", s.dashboard)

		api.GET("/research/config", s.getResearchConfig)
		api.POST("/research/config", s.setResearchConfig)
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Printf("listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// clean strips markup from user input and trims it
func (s *Server) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}

// fail writes err with the status its kind maps to
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrUnknownSource),
		errors.Is(err, model.ErrUnknownPlatform):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrMissingCredentials):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
