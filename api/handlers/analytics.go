package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/car-analytics/api/middleware"
	"github.com/OldStager01/car-analytics/internal/analytics"
	"github.com/OldStager01/car-analytics/pkg/models"
)

const resolveTimeout = 10 * time.Second

// DatasetResolver hands out the active dataset.
type DatasetResolver interface {
	Resolve(ctx context.Context) (*models.Dataset, error)
}

type AnalyticsHandler struct {
	resolver DatasetResolver
	engine   *analytics.Engine
}

func NewAnalyticsHandler(resolver DatasetResolver, engine *analytics.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{
		resolver: resolver,
		engine:   engine,
	}
}

type DashboardResponse struct {
	Source   models.SourceKind `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
	Summary  models.Summary    `json:"summary"`
}

type DomainsResponse struct {
	Source  models.SourceKind   `json:"source"`
	Domains models.FieldDomains `json:"domains"`
}

// resolve fetches the dataset and tags the request with its source.
func resolve(c *gin.Context, resolver DatasetResolver) (*models.Dataset, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), resolveTimeout)
	defer cancel()

	ds, err := resolver.Resolve(ctx)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	middleware.SetSource(c, string(ds.Source))
	return ds, true
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	ds, ok := resolve(c, h.resolver)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
		Summary:  h.engine.Summarize(ds),
	})
}

func (h *AnalyticsHandler) Domains(c *gin.Context) {
	ds, ok := resolve(c, h.resolver)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, DomainsResponse{
		Source:  ds.Source,
		Domains: h.engine.Domains(ds),
	})
}
