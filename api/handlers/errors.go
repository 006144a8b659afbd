package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/car-analytics/internal/artifact"
	"github.com/OldStager01/car-analytics/internal/codec"
	"github.com/OldStager01/car-analytics/internal/inference"
	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/internal/source"
	"github.com/OldStager01/car-analytics/pkg/validation"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string      `json:"error"`
	Field string      `json:"field,omitempty"`
	Value string      `json:"value,omitempty"`
	Range interface{} `json:"range,omitempty"`
}

// respondError maps pipeline errors to HTTP statuses. User-correctable
// input problems are 4xx; missing data or model is 503.
func respondError(c *gin.Context, err error) {
	var (
		catErr   *codec.CategoryError
		codeErr  *codec.CodeError
		yearErr  *inference.YearError
		fieldErr *validation.FieldError
	)

	switch {
	case errors.As(err, &catErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "unknown category",
			Field: catErr.Field,
			Value: catErr.Value,
		})
	case errors.As(err, &yearErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "year of manufacture out of range",
			Field: "year_of_manufacture",
			Range: yearErr.Bounds,
		})
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fieldErr.Reason,
			Field: string(fieldErr.Field),
		})
	case errors.As(err, &codeErr):
		logger.ErrorCtxf(c.Request.Context(), "Model and codec disagree: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "model/codec mismatch",
			Field: codeErr.Field,
		})
	case errors.Is(err, source.ErrSnapshotUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no data source available"})
	case errors.Is(err, artifact.ErrArtifactUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "prediction unavailable"})
	default:
		logger.ErrorCtxf(c.Request.Context(), "Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	_ = c.Error(err)
}
