// Package http provides HTTP handlers for catalog discovery and the typed
// operations dispatched to remote ArcGIS services.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/geocrest/gateway/internal/arcgis/http/dto"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	"github.com/geocrest/gateway/internal/httputil"
	customValidation "github.com/geocrest/gateway/internal/validation"
)

type validatable interface {
	Validate() error
}

// bindQuery binds the query string into req and validates it. On failure the
// error response is written and false is returned.
func bindQuery(c *gin.Context, req validatable, logger *slog.Logger) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httputil.HandleBadRequestGin(c, err, logger)
		return false
	}
	return validate(c, req, logger)
}

// bindJSON binds the JSON body into req and validates it. On failure the
// error response is written and false is returned.
func bindJSON(c *gin.Context, req validatable, logger *slog.Logger) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleValidationErrorGin(c, err, logger)
		return false
	}
	return validate(c, req, logger)
}

func validate(c *gin.Context, req validatable, logger *slog.Logger) bool {
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), logger)
		return false
	}
	return true
}

func serviceRef(req dto.ServiceRequest) arcgisUseCase.ServiceRef {
	return arcgisUseCase.ServiceRef{URL: req.URL, ProxyURL: req.Proxy}
}
