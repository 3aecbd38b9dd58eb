package domain

import (
	apperrors "github.com/geocrest/gateway/internal/errors"
)

// ArcGIS domain errors.
var (
	// ErrInvalidGeometry indicates a geometry with zero or several coordinate groups, or a partial one.
	ErrInvalidGeometry = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid geometry")

	// ErrMixedGeometryTypes indicates a geometry batch whose members differ in type.
	ErrMixedGeometryTypes = apperrors.Wrap(apperrors.ErrInvalidInput, "geometries must share one type")

	// ErrUnsupportedServiceType indicates a URL whose service type has no implementation.
	ErrUnsupportedServiceType = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported service type")

	// ErrOperationNotSupported indicates the service does not offer the requested operation.
	ErrOperationNotSupported = apperrors.Wrap(apperrors.ErrInvalidInput, "operation not supported by service")

	// ErrUnsupportedGPType indicates a geoprocessing value whose shape cannot be resolved.
	ErrUnsupportedGPType = apperrors.Wrap(apperrors.ErrRemoteRejected, "unsupported geoprocessing data type")

	// ErrInvalidJobStatus indicates an unrecognized geoprocessing job status.
	ErrInvalidJobStatus = apperrors.Wrap(apperrors.ErrRemoteRejected, "invalid job status")

	// ErrPollTimeout indicates a job did not reach a terminal status before the poll ceiling.
	ErrPollTimeout = apperrors.Wrap(apperrors.ErrUnreachable, "geoprocessing job poll timed out")

	// ErrCatalogUnavailable indicates a catalog could not be discovered or refreshed.
	ErrCatalogUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "catalog unavailable")

	// ErrTaskNotFound indicates a geoprocessing task name absent from its server.
	ErrTaskNotFound = apperrors.Wrap(apperrors.ErrNotFound, "geoprocessing task not found")

	// ErrLayerNotFound indicates a layer id absent from its service.
	ErrLayerNotFound = apperrors.Wrap(apperrors.ErrNotFound, "layer not found")
)
