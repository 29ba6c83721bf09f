package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/report"
	"github.com/ppiankov/claimwatch/internal/store"
)

// POST /api/influencers
func (s *Server) addInfluencer(c *gin.Context) {
	var req struct {
		Name          string `json:"name" form:"name"`
		Platform      string `json:"platform" form:"platform"`
		Handle        string `json:"handle" form:"handle"`
		FollowerCount int    `json:"follower_count" form:"follower_count"`
		Bio           string `json:"bio" form:"bio"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "bad payload: "+err.Error())
		return
	}

	inf, err := s.tracker.Repo().AddInfluencer(c.Request.Context(), model.Influencer{
		Name:          s.clean(req.Name),
		Platform:      s.clean(req.Platform),
		Handle:        s.clean(req.Handle),
		FollowerCount: req.FollowerCount,
		Bio:           s.clean(req.Bio),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inf)
}

// GET /api/influencers
func (s *Server) listInfluencers(c *gin.Context) {
	list, err := s.tracker.Repo().Influencers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/influencers/:id
func (s *Server) getInfluencer(c *gin.Context) {
	inf, err := s.tracker.Repo().Influencer(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inf)
}

// POST /api/influencers/:id/scan
func (s *Server) scanInfluencer(c *gin.Context) {
	res, err := s.tracker.Scan(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/influencers/:id/analyze with an optional research config body
func (s *Server) analyzeInfluencer(c *gin.Context) {
	var override *model.ResearchConfig
	var cfg model.ResearchConfig
	switch err := c.ShouldBindJSON(&cfg); {
	case err == nil:
		override = &cfg
	case errors.Is(err, io.EOF):
		// No body: use the current research settings
	default:
		badRequest(c, "bad research config: "+err.Error())
		return
	}

	res, err := s.tracker.Analyze(c.Request.Context(), c.Param("id"), override)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/claims
func (s *Server) addClaim(c *gin.Context) {
	var req struct {
		InfluencerID string `json:"influencer_id" form:"influencer_id"`
		Content      string `json:"content" form:"content"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "bad payload: "+err.Error())
		return
	}

	claim, err := s.tracker.AddClaim(c.Request.Context(), req.InfluencerID, s.clean(req.Content))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// GET /api/claims/:influencer_id
func (s *Server) listClaims(c *gin.Context) {
	claims, err := s.tracker.Repo().Claims(c.Request.Context(), c.Param("influencer_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, claims)
}

// GET /api/analyze?content=...&sources=pubmed,crossref
func (s *Server) analyze(c *gin.Context) {
	content := s.clean(c.Query("content"))
	if content == "" {
		badRequest(c, "content is required")
		return
	}

	scored, err := s.analyzer.AnalyzeWithSources(c.Request.Context(), content, splitList(c.QueryArray("sources")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, scored)
}

// POST /api/batch-process with a JSON array of claims (or {"claims": [...]})
func (s *Server) batchProcess(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		badRequest(c, "unreadable body")
		return
	}
	claims, err := decodeClaims(body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	cleaned := make([]string, 0, len(claims))
	for _, cl := range claims {
		if cl = s.clean(cl); cl != "" {
			cleaned = append(cleaned, cl)
		}
	}
	if len(cleaned) == 0 {
		badRequest(c, "no claims to process")
		return
	}
	if len(cleaned) > s.maxBatch {
		badRequest(c, "too many claims in one batch")
		return
	}

	results := s.batch.ProcessBatch(c.Request.Context(), cleaned)
	rep := report.FromBatch("Batch analysis", results)
	c.JSON(http.StatusOK, gin.H{
		"processed": len(results),
		"summary":   rep.Summary,
		"results":   rep.Entries,
	})
}

// GET /api/stats
func (s *Server) stats(c *gin.Context) {
	st, err := store.GetStats(c.Request.Context(), s.tracker.Repo())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/analytics/report
func (s *Server) analytics(c *gin.Context) {
	a, err := store.GetAnalytics(c.Request.Context(), s.tracker.Repo())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// GET /api/dashboard/leaderboard
func (s *Server) leaderboard(c *gin.Context) {
	board, err := store.Leaderboard(c.Request.Context(), s.tracker.Repo())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// GET /api/dashboard/influencer/:id
func (s *Server) dashboard(c *gin.Context) {
	d, err := store.GetDashboard(c.Request.Context(), s.tracker.Repo(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/research/config
func (s *Server) getResearchConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Research().Get())
}

// POST /api/research/config
func (s *Server) setResearchConfig(c *gin.Context) {
	var cfg model.ResearchConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, "bad research config: "+err.Error())
		return
	}
	stored, err := s.tracker.Research().Set(cfg)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Research configuration updated", "config": stored})
}

// splitList flattens repeated and comma-separated query values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
