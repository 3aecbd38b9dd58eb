package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocrest/gateway/internal/arcgis/http/dto"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	"github.com/geocrest/gateway/internal/httputil"
)

// CatalogHandler handles HTTP requests for catalog discovery.
type CatalogHandler struct {
	gatewayUseCase arcgisUseCase.GatewayUseCase
	logger         *slog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(gatewayUseCase arcgisUseCase.GatewayUseCase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		gatewayUseCase: gatewayUseCase,
		logger:         logger,
	}
}

// GetHandler returns the catalog at a services root with a page of its services.
// GET /v1/catalog?url=&proxy=&offset=&limit=
func (h *CatalogHandler) GetHandler(c *gin.Context) {
	var req dto.CatalogRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	catalog, err := h.gatewayUseCase.Catalog(c.Request.Context(), req.URL, req.Proxy)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	services := httputil.Paginate(catalog.ServiceInfos, offset, limit)
	c.JSON(http.StatusOK, dto.MapCatalogToResponse(catalog, services, offset, limit))
}

// DeleteHandler drops the cached catalog so the next request rediscovers it.
// DELETE /v1/catalog?url=&proxy=
func (h *CatalogHandler) DeleteHandler(c *gin.Context) {
	var req dto.CatalogRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	if err := h.gatewayUseCase.InvalidateCatalog(c.Request.Context(), req.URL, req.Proxy); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
