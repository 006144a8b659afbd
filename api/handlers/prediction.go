package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/car-analytics/internal/analytics"
	"github.com/OldStager01/car-analytics/internal/artifact"
	"github.com/OldStager01/car-analytics/pkg/models"
	"github.com/OldStager01/car-analytics/pkg/validation"
)

type Predictor interface {
	Predict(req models.PredictionRequest, bounds models.YearRange) (models.Prediction, error)
}

type PredictionHandler struct {
	resolver    DatasetResolver
	engine      *analytics.Engine
	predictor   Predictor
	unavailable error
}

// NewPredictionHandler serves predictions from predictor. A nil predictor
// disables the route; unavailable says why and is logged by the caller.
func NewPredictionHandler(resolver DatasetResolver, engine *analytics.Engine, predictor Predictor, unavailable error) *PredictionHandler {
	if predictor == nil && unavailable == nil {
		unavailable = artifact.ErrArtifactUnavailable
	}
	return &PredictionHandler{
		resolver:    resolver,
		engine:      engine,
		predictor:   predictor,
		unavailable: unavailable,
	}
}

type PredictionResponse struct {
	Brand  string            `json:"brand"`
	Source models.SourceKind `json:"source"`
}

func (h *PredictionHandler) Available() bool {
	return h.predictor != nil
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	if h.predictor == nil {
		respondError(c, h.unavailable)
		return
	}

	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	req, err := validation.SanitizePredictionRequest(req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Year bounds come from whichever dataset is active right now.
	ds, ok := resolve(c, h.resolver)
	if !ok {
		return
	}

	pred, err := h.predictor.Predict(req, h.engine.YearRange(ds))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PredictionResponse{
		Brand:  pred.Brand,
		Source: ds.Source,
	})
}
