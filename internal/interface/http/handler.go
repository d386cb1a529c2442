package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tessely/summarizer/internal/domain/summarizer"
	"github.com/tessely/summarizer/internal/infra/config"
	apperrors "github.com/tessely/summarizer/pkg/errors"
)

const version = "1.0.0"

// Handler wires the HTTP transport to the summarization domain.
type Handler struct {
	svc    summarizer.Service
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc summarizer.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		cfg:    cfg,
		logger: logger.With("component", "http.handler"),
	}
}

type summarizeRequest struct {
	Text              string `json:"text"`
	Mode              string `json:"mode"`
	TopK              int    `json:"top_k"`
	IncludeProvenance bool   `json:"include_provenance"`
}

// Summarize handles POST /api/v1/summarize.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "malformed request body", err))
		return
	}

	if req.Mode == "" {
		req.Mode = string(summarizer.ModeExtractive)
	}
	mode, err := summarizer.ParseMode(req.Mode)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err))
		return
	}

	result, err := h.svc.Summarize(c.Request.Context(), summarizer.Request{
		Text:              req.Text,
		Mode:              mode,
		TopK:              req.TopK,
		IncludeProvenance: req.IncludeProvenance,
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "summarize_failed"
		switch {
		case apperrors.IsCode(err, summarizer.CodeInvalidInput):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, summarizer.CodeModelUnavailable):
			status = http.StatusBadGateway
			code = "model_unavailable"
		}
		abortWithError(c, NewHTTPError(status, code, err.Error(), err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version,
		"components": gin.H{
			"pipeline":  "ok",
			"cache":     "ok",
			"generator": generatorStatus(h.cfg),
		},
	})
}

// Modes handles GET /api/v1/modes.
func (h *Handler) Modes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes": []gin.H{
			{
				"name":        string(summarizer.ModeExtractive),
				"description": "Graph-ranked sentence extraction; fastest tier.",
				"stages":      []string{"preprocess", "textrank"},
			},
			{
				"name":        string(summarizer.ModeSemantic),
				"description": "Extractive candidates reranked by embedding similarity to the document.",
				"stages":      []string{"preprocess", "textrank", "semantic_rerank"},
			},
			{
				"name":        string(summarizer.ModeAbstractive),
				"description": "Semantic selection paraphrased into a fluent summary by a generative model.",
				"stages":      []string{"preprocess", "textrank", "semantic_rerank", "generation"},
			},
		},
		"defaults": gin.H{
			"top_k":              h.cfg.Pipeline.DefaultTopK,
			"max_top_k":          h.cfg.Pipeline.MaxTopK,
			"blend_weight":       h.cfg.Pipeline.BlendWeight,
			"damping":            h.cfg.Pipeline.Damping,
			"generation_timeout": h.cfg.Pipeline.GenerationTimeout.String(),
		},
	})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stats_failed", "failed to load stats", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func generatorStatus(cfg *config.Config) string {
	if cfg.LLM.APIKey == "" {
		return "not_configured"
	}
	return "ok"
}
