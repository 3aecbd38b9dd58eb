package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
)

// JobHandler receives job events. Callbacks run on the job's watch goroutine;
// nil callbacks are skipped.
type JobHandler struct {
	// StatusUpdated fires on every observed status change, including the final one.
	StatusUpdated func(arcgisDomain.JobInfo)
	// JobCompleted fires once when the server reports a terminal status.
	JobCompleted func(arcgisDomain.JobInfo)
	// Failed fires once when the watch ends without a terminal status.
	Failed func(error)
}

// Job mirrors a server-side geoprocessing job by polling its status.
type Job struct {
	ID string

	task    *GPTask
	handler JobHandler
	logger  *slog.Logger

	mu   sync.Mutex
	info arcgisDomain.JobInfo
	err  error

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newJob(task *GPTask, jobID string, handler JobHandler) *Job {
	j := &Job{
		ID:      jobID,
		task:    task,
		handler: handler,
		logger:  task.logger,
		info:    arcgisDomain.JobInfo{JobID: jobID, Status: arcgisDomain.JobNew},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if j.logger == nil {
		j.logger = slog.New(slog.DiscardHandler)
	}
	return j
}

// Status returns the last known status.
func (j *Job) Status() arcgisDomain.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.info.Status
}

// Info returns the last known job document.
func (j *Job) Info() arcgisDomain.JobInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.info
}

// Err returns why the watch failed, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Done is closed when the watch ends.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the watch ends or ctx is done.
func (j *Job) Wait(ctx context.Context) (arcgisDomain.JobInfo, error) {
	select {
	case <-j.done:
		return j.Info(), j.Err()
	case <-ctx.Done():
		return j.Info(), ctx.Err()
	}
}

// Cancel stops the local watch. The server-side job keeps running; use
// GPTask.CancelJob to cancel it there.
func (j *Job) Cancel() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
}

// update records info and fires StatusUpdated when the status changed.
func (j *Job) update(info arcgisDomain.JobInfo) {
	j.mu.Lock()
	previous := j.info.Status
	if !previous.CanTransition(info.Status) {
		j.logger.Warn("unexpected job status transition",
			slog.String("job_id", j.ID),
			slog.String("from", previous.String()),
			slog.String("to", info.Status.String()))
	}
	j.info = info
	j.mu.Unlock()

	if previous != info.Status && j.handler.StatusUpdated != nil {
		j.handler.StatusUpdated(info)
	}
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	j.err = err
	j.mu.Unlock()

	j.logger.Warn("job watch failed", slog.String("job_id", j.ID), slog.Any("error", err))
	if j.handler.Failed != nil {
		j.handler.Failed(err)
	}
}

func (j *Job) complete() {
	info := j.Info()
	j.logger.Debug("job completed", slog.String("job_id", j.ID), slog.String("status", info.Status.String()))
	if j.handler.JobCompleted != nil {
		j.handler.JobCompleted(info)
	}
}

// watch records the submitted status, then polls the job until a terminal
// status, an error, cancellation or the poll ceiling, and fires exactly one of
// JobCompleted and Failed.
func (j *Job) watch(ctx context.Context, submitted arcgisDomain.JobInfo) {
	defer close(j.done)

	delay := j.task.updateDelay
	if delay <= 0 {
		delay = DefaultUpdateDelay
	}
	ceiling := j.task.maxPollDuration
	if ceiling <= 0 {
		ceiling = DefaultMaxPollDuration
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-j.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	j.update(submitted)

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	deadline := time.NewTimer(ceiling)
	defer deadline.Stop()

	for {
		if j.Status().IsTerminal() {
			j.complete()
			return
		}

		select {
		case <-ctx.Done():
			j.fail(ctx.Err())
			return
		case <-j.stop:
			j.fail(context.Canceled)
			return
		case <-deadline.C:
			j.fail(arcgisDomain.ErrPollTimeout)
			return
		case <-ticker.C:
			info, err := j.task.JobStatus(ctx, j.ID)
			if err != nil {
				j.fail(err)
				return
			}
			j.update(*info)
		}
	}
}
