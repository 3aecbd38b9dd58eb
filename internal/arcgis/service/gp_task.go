package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/rest"
)

// GPTask is a single task of a geoprocessing service.
type GPTask struct {
	base
	Info arcgisDomain.GPTaskInfo

	updateDelay     time.Duration
	maxPollDuration time.Duration
	logger          *slog.Logger
}

// ExecuteHandler receives the outcome of ExecuteAsync. Exactly one of the
// callbacks is invoked; nil callbacks are skipped.
type ExecuteHandler struct {
	ExecuteCompleted func(*arcgisDomain.GPExecuteResult)
	Failed           func(error)
}

// ImageOptions controls how a result is rendered by GetResultImage.
type ImageOptions struct {
	OutSR int
}

// Name returns the task name.
func (t *GPTask) Name() string {
	return t.Info.Name
}

// IsAsynchronous reports whether the task must be run as a job.
func (t *GPTask) IsAsynchronous() bool {
	return t.Info.ExecutionType == arcgisDomain.ExecutionAsynchronous
}

// Execute runs a synchronous task and returns its results.
func (t *GPTask) Execute(ctx context.Context, params []arcgisDomain.GPParameter) (*arcgisDomain.GPExecuteResult, error) {
	v, err := arcgisDomain.EncodeGPInputs(params)
	if err != nil {
		return nil, err
	}

	result, err := rest.PostForm[arcgisDomain.GPExecuteResult](
		ctx, t.client, t.endpoint("execute"), t.authorize(v), t.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ExecuteAsync runs Execute on a new goroutine and reports through handler.
func (t *GPTask) ExecuteAsync(ctx context.Context, params []arcgisDomain.GPParameter, handler ExecuteHandler) {
	go func() {
		result, err := t.Execute(ctx, params)
		if err != nil {
			if handler.Failed != nil {
				handler.Failed(err)
			}
			return
		}
		if handler.ExecuteCompleted != nil {
			handler.ExecuteCompleted(result)
		}
	}()
}

// Submit starts an asynchronous job and returns its initial status without watching it.
func (t *GPTask) Submit(ctx context.Context, params []arcgisDomain.GPParameter) (*arcgisDomain.JobInfo, error) {
	v, err := arcgisDomain.EncodeGPInputs(params)
	if err != nil {
		return nil, err
	}

	info, err := rest.PostForm[arcgisDomain.JobInfo](
		ctx, t.client, t.endpoint("submitJob"), t.authorize(v), t.options()...,
	)
	if err != nil {
		return nil, err
	}
	if info.JobID == "" {
		return nil, apperrors.Wrap(rest.ErrMalformedResponse, "submitJob returned no job id")
	}
	return &info, nil
}

// SubmitJob starts an asynchronous job and watches it until it reaches a
// terminal status, reporting through handler. A submission failure is returned
// and no event fires. Otherwise exactly one of JobCompleted and Failed fires.
//
// The watch stops when ctx is done, Job.Cancel is called, or the poll ceiling
// is reached; each of those fires Failed.
func (t *GPTask) SubmitJob(ctx context.Context, params []arcgisDomain.GPParameter, handler JobHandler) (*Job, error) {
	info, err := t.Submit(ctx, params)
	if err != nil {
		return nil, err
	}

	job := newJob(t, info.JobID, handler)
	go job.watch(ctx, *info)
	return job, nil
}

// JobStatus fetches the current status of a job.
func (t *GPTask) JobStatus(ctx context.Context, jobID string) (*arcgisDomain.JobInfo, error) {
	if jobID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "job id is required")
	}

	info, err := rest.Hydrate[arcgisDomain.JobInfo](
		ctx, t.client, t.target(t.endpoint("jobs", url.PathEscape(jobID)), nil), t.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// CancelJob asks the server to cancel a job.
func (t *GPTask) CancelJob(ctx context.Context, jobID string) (*arcgisDomain.JobInfo, error) {
	if jobID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "job id is required")
	}

	info, err := rest.PostForm[arcgisDomain.JobInfo](
		ctx, t.client, t.endpoint("jobs", url.PathEscape(jobID), "cancel"), t.authorize(nil), t.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetResultData fetches a job result parameter and resolves its GP variant.
func (t *GPTask) GetResultData(ctx context.Context, jobID, param string) (*arcgisDomain.GPParameter, error) {
	return t.getResult(ctx, jobID, param, nil)
}

// GetResultImage fetches a job result rendered as a map image.
func (t *GPTask) GetResultImage(
	ctx context.Context,
	jobID, param string,
	opts ImageOptions,
) (*arcgisDomain.GPParameter, error) {
	v := url.Values{}
	v.Set("returnType", "image")
	if opts.OutSR != 0 {
		v.Set("env:outSR", strconv.Itoa(opts.OutSR))
	}
	return t.getResult(ctx, jobID, param, v)
}

func (t *GPTask) getResult(ctx context.Context, jobID, param string, v url.Values) (*arcgisDomain.GPParameter, error) {
	if jobID == "" || param == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "job id and parameter name are required")
	}

	target := t.target(t.endpoint("jobs", url.PathEscape(jobID), "results", url.PathEscape(param)), v)
	body, err := t.client.Get(ctx, target, t.options()...)
	if err != nil {
		return nil, err
	}

	result, err := arcgisDomain.DecodeGPResult(body)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
