package api

import (
	"net/http"

	"promolift/domain/promo"
	"promolift/internal/analysis"
	"promolift/internal/errors"
	"promolift/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the analyses as JSON
type Handler struct {
	analyzer *analysis.Analyzer
	log      *logrus.Entry
}

// NewHandler creates a new API handler
func NewHandler(analyzer *analysis.Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
		log:      logrus.WithField("component", "API"),
	}
}

// NewRouter builds the gin engine with every route under /api
func NewRouter(analyzer *analysis.Analyzer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	NewHandler(analyzer).Register(router.Group("/api"))
	return router
}

// Register attaches the handler's routes to a router group
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/summary", h.Summary)
	rg.GET("/trend", h.Trend)
	rg.GET("/assumptions", h.Assumptions)
	rg.GET("/test", h.Test)
	rg.GET("/effect-size", h.EffectSize)
	rg.GET("/segments/:covariate", h.Segments)
	rg.GET("/anova", h.Anova)
	rg.GET("/report", h.Report)
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Summary returns group counts, describe statistics and a preview
func (h *Handler) Summary(c *gin.Context) {
	result, err := h.analyzer.Summary(c.Request.Context())
	h.respond(c, result, err)
}

// Trend returns weekly sales per group
func (h *Handler) Trend(c *gin.Context) {
	result, err := h.analyzer.Trend(c.Request.Context())
	h.respond(c, result, err)
}

// Assumptions returns the normality and variance checks
func (h *Handler) Assumptions(c *gin.Context) {
	result, err := h.analyzer.Assumptions(c.Request.Context())
	h.respond(c, result, err)
}

// Test returns the selected hypothesis test
func (h *Handler) Test(c *gin.Context) {
	result, err := h.analyzer.Test(c.Request.Context())
	h.respond(c, result, err)
}

// EffectSize returns Cohen's d
func (h *Handler) EffectSize(c *gin.Context) {
	result, err := h.analyzer.EffectSize(c.Request.Context())
	h.respond(c, result, err)
}

// Segments returns the breakdown for the covariate in the path
func (h *Handler) Segments(c *gin.Context) {
	cov, err := promo.ParseCovariate(c.Param("covariate"))
	if err != nil {
		h.respond(c, nil, err)
		return
	}
	result, err := h.analyzer.Segments(c.Request.Context(), cov)
	h.respond(c, result, err)
}

// Anova returns the five factorial model tables
func (h *Handler) Anova(c *gin.Context) {
	result, err := h.analyzer.Anova(c.Request.Context())
	h.respond(c, result, err)
}

// Report returns the full report as JSON, or ?format=markdown|yaml
func (h *Handler) Report(c *gin.Context) {
	result, err := h.analyzer.Report(c.Request.Context())
	if err != nil {
		h.respond(c, nil, err)
		return
	}
	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, result)
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(result)))
	case "yaml":
		out, err := report.YAML(result)
		if err != nil {
			h.respond(c, nil, err)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
	default:
		h.respond(c, nil, errors.InvalidInput("format must be json, markdown or yaml"))
	}
}

func (h *Handler) respond(c *gin.Context, result interface{}, err error) {
	if err != nil {
		code := errors.GetCode(err)
		status := statusFor(code)
		if status >= http.StatusInternalServerError {
			h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, result)
}

// statusFor maps request errors to 4xx; anything from loading the dataset is a 500
func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
