package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/geocrest/gateway/internal/arcgis/http/dto"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/httputil"
)

// ServiceHandler handles HTTP requests dispatched to a single remote service.
type ServiceHandler struct {
	gatewayUseCase arcgisUseCase.GatewayUseCase
	logger         *slog.Logger
}

// NewServiceHandler creates a new service handler.
func NewServiceHandler(gatewayUseCase arcgisUseCase.GatewayUseCase, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{
		gatewayUseCase: gatewayUseCase,
		logger:         logger,
	}
}

// GetHandler describes a service and links the operations it supports.
// GET /v1/service?url=&proxy=
func (h *ServiceHandler) GetHandler(c *gin.Context) {
	var req dto.ServiceRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	s, err := h.gatewayUseCase.Service(c.Request.Context(), serviceRef(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapServiceToResponse(s, req.Proxy))
}

// LayerHandler describes one layer or table of a map or feature service.
// GET /v1/service/layers/:layerId?url=&proxy=
func (h *ServiceHandler) LayerHandler(c *gin.Context) {
	layerID, err := strconv.Atoi(c.Param("layerId"))
	if err != nil || layerID < 0 {
		httputil.HandleErrorGin(c, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid layer id %q", c.Param("layerId")), h.logger)
		return
	}

	var req dto.ServiceRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	layer, err := h.gatewayUseCase.Layer(c.Request.Context(), serviceRef(req), layerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, layer)
}

// QueryHandler queries one layer of a map or feature service.
// GET /v1/service/query?url=&layer=&where=&...
func (h *ServiceHandler) QueryHandler(c *gin.Context) {
	var req dto.QueryRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	params, err := req.ToParams()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result, err := h.gatewayUseCase.Query(c.Request.Context(), serviceRef(req.ServiceRequest), req.Layer, params)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}

// IdentifyHandler identifies features of a map service at a location.
// POST /v1/service/identify
func (h *ServiceHandler) IdentifyHandler(c *gin.Context) {
	var req dto.IdentifyRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	params, err := req.ToParams()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result, err := h.gatewayUseCase.Identify(c.Request.Context(), serviceRef(req.ServiceRequest), params)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GeocodeHandler finds address candidates, best score first.
// POST /v1/service/geocode
func (h *ServiceHandler) GeocodeHandler(c *gin.Context) {
	var req dto.GeocodeRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	result, err := h.gatewayUseCase.FindAddressCandidates(
		c.Request.Context(),
		serviceRef(req.ServiceRequest),
		req.ToParams(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReverseGeocodeHandler finds the address nearest to a point.
// GET /v1/service/reverse-geocode?url=&x=&y=&wkid=&distance=&outSR=
func (h *ServiceHandler) ReverseGeocodeHandler(c *gin.Context) {
	var req dto.ReverseGeocodeRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	result, err := h.gatewayUseCase.ReverseGeocode(
		c.Request.Context(),
		serviceRef(req.ServiceRequest),
		req.Location(),
		req.Distance,
		req.OutSR,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ProjectHandler projects geometries between spatial references.
// POST /v1/service/project
func (h *ServiceHandler) ProjectHandler(c *gin.Context) {
	var req dto.ProjectRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	geometries, err := h.gatewayUseCase.Project(
		c.Request.Context(),
		serviceRef(req.ServiceRequest),
		req.Geometries,
		req.InSR,
		req.OutSR,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectResponse{Geometries: geometries})
}
