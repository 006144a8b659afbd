package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/car-analytics/internal/source"
)

// SourceReporter is a DatasetResolver that can also describe itself and
// check that a dataset is servable without producing one.
type SourceReporter interface {
	DatasetResolver
	Status() source.Status
	Check(ctx context.Context) error
}

type HealthHandler struct {
	resolver SourceReporter
	model    error
}

// NewHealthHandler reports on resolver; modelErr is nil when prediction is
// available.
func NewHealthHandler(resolver SourceReporter, modelErr error) *HealthHandler {
	return &HealthHandler{resolver: resolver, model: modelErr}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Source    *source.Status    `json:"source,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is unhealthy only when no dataset can be served. A snapshot
// fallback or a missing model degrades it.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	st := h.resolver.Status()
	if err := h.resolver.Check(ctx); err != nil {
		checks["data"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else if st.Source != "" {
		checks["data"] = string(st.Source)
	} else {
		checks["data"] = "available"
	}

	if h.model != nil {
		checks["model"] = "unavailable: " + h.model.Error()
	} else {
		checks["model"] = "available"
	}

	if status == "healthy" && (st.Degraded || h.model != nil) {
		status = "degraded"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    &st,
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.resolver.Check(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
