package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocrest/gateway/internal/arcgis/http/dto"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	"github.com/geocrest/gateway/internal/httputil"
	tokenHTTP "github.com/geocrest/gateway/internal/token/http"
)

// TaskHandler handles HTTP requests for geoprocessing tasks and their jobs.
type TaskHandler struct {
	gatewayUseCase arcgisUseCase.GatewayUseCase
	logger         *slog.Logger
}

// NewTaskHandler creates a new geoprocessing task handler.
func NewTaskHandler(gatewayUseCase arcgisUseCase.GatewayUseCase, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		gatewayUseCase: gatewayUseCase,
		logger:         logger,
	}
}

// ExecuteHandler runs a synchronous task.
// POST /v1/tasks/execute
func (h *TaskHandler) ExecuteHandler(c *gin.Context) {
	var req dto.ExecuteRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	params, err := req.ToParams()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result, err := h.gatewayUseCase.Execute(c.Request.Context(), serviceRef(req.ServiceRequest), req.Task, params)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExecuteResultToResponse(result))
}

// SubmitJobHandler submits a job to an asynchronous task.
// POST /v1/tasks/jobs
// Returns 202 Accepted with the submitted job, or 200 OK with the terminal job when wait is set.
func (h *TaskHandler) SubmitJobHandler(c *gin.Context) {
	var req dto.ExecuteRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	params, err := req.ToParams()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ctx := c.Request.Context()
	ref := serviceRef(req.ServiceRequest)

	submit := h.gatewayUseCase.SubmitJob
	status := http.StatusAccepted
	if req.Wait {
		submit = h.gatewayUseCase.RunJob
		status = http.StatusOK
	}

	job, err := submit(ctx, ref, req.Task, params)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	attrs := []any{
		slog.String("job_id", job.JobID),
		slog.String("task", req.Task),
		slog.String("status", job.Status.String()),
	}
	if token, ok := tokenHTTP.GetToken(ctx); ok {
		attrs = append(attrs, slog.String("group", token.GroupName))
	}
	h.logger.Info("geoprocessing job submitted", attrs...)

	c.JSON(status, dto.MapJobToResponse(job, req.URL, req.Proxy, req.Task))
}

// GetJobHandler returns the current status of a job.
// GET /v1/tasks/jobs/:jobId?url=&task=
func (h *TaskHandler) GetJobHandler(c *gin.Context) {
	var req dto.JobRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	job, err := h.gatewayUseCase.JobStatus(c.Request.Context(), serviceRef(req.ServiceRequest), req.Task, c.Param("jobId"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapJobToResponse(job, req.URL, req.Proxy, req.Task))
}

// CancelJobHandler asks the server to cancel a job.
// DELETE /v1/tasks/jobs/:jobId?url=&task=
func (h *TaskHandler) CancelJobHandler(c *gin.Context) {
	var req dto.JobRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	job, err := h.gatewayUseCase.CancelJob(c.Request.Context(), serviceRef(req.ServiceRequest), req.Task, c.Param("jobId"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapJobToResponse(job, req.URL, req.Proxy, req.Task))
}

// ResultHandler fetches one result parameter of a job, rendered as a map
// image when image is set.
// GET /v1/tasks/jobs/:jobId/results/:param?url=&task=&image=&outSR=
func (h *TaskHandler) ResultHandler(c *gin.Context) {
	var req dto.JobRequest
	if !bindQuery(c, &req, h.logger) {
		return
	}

	result, err := h.gatewayUseCase.JobResult(
		c.Request.Context(),
		serviceRef(req.ServiceRequest),
		req.Task,
		c.Param("jobId"),
		c.Param("param"),
		arcgisUseCase.ResultOptions{Image: req.Image, OutSR: req.OutSR},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGPParameterToResponse(*result))
}
