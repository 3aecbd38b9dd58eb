package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
)

const (
	toolsPath  = servicesRoot + "/Tools/GPServer"
	bufferPath = toolsPath + "/Buffer"
)

func newTestTask(t *testing.T, fake *fakeArcGIS, executionType arcgisDomain.ExecutionType) *GPTask {
	t.Helper()

	fake.json(toolsPath, `{"currentVersion":10.91,"tasks":["Buffer"],"executionType":"`+string(executionType)+`"}`)
	fake.json(bufferPath, `{"name":"Buffer","executionType":"`+string(executionType)+`","parameters":[
		{"name":"Input_Features","dataType":"GPFeatureRecordSetLayer","direction":"esriGPParameterDirectionInput"},
		{"name":"Distance","dataType":"GPLinearUnit","direction":"esriGPParameterDirectionInput"},
		{"name":"Output","dataType":"GPFeatureRecordSetLayer","direction":"esriGPParameterDirectionOutput"}
	]}`)

	factory := fake.factory(WithJobPolling(5*time.Millisecond, 2*time.Second))
	service, err := factory.CreateService(context.Background(), fake.url(toolsPath), WithVersion(10.91))
	require.NoError(t, err)

	geoprocessor, ok := service.(Geoprocessor)
	require.True(t, ok)

	task, err := geoprocessor.Task(context.Background(), "buffer")
	require.NoError(t, err)
	return task
}

func bufferInputs() []arcgisDomain.GPParameter {
	return []arcgisDomain.GPParameter{
		{Name: "Distance", Value: arcgisDomain.GPLinearUnit{Distance: 5, Units: "esriMiles"}},
		{Name: "Label", Value: arcgisDomain.GPString("wells")},
	}
}

// jobEvents records the callbacks fired for one job.
type jobEvents struct {
	mu        sync.Mutex
	statuses  []arcgisDomain.JobStatus
	completed []arcgisDomain.JobInfo
	failed    []error
}

func (e *jobEvents) handler() JobHandler {
	return JobHandler{
		StatusUpdated: func(info arcgisDomain.JobInfo) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.statuses = append(e.statuses, info.Status)
		},
		JobCompleted: func(info arcgisDomain.JobInfo) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.completed = append(e.completed, info)
		},
		Failed: func(err error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.failed = append(e.failed, err)
		},
	}
}

func (e *jobEvents) snapshot() ([]arcgisDomain.JobStatus, []arcgisDomain.JobInfo, []error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]arcgisDomain.JobStatus{}, e.statuses...),
		append([]arcgisDomain.JobInfo{}, e.completed...),
		append([]error{}, e.failed...)
}

func waitJob(t *testing.T, job *Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job watch did not finish")
	}
}

func TestGPServer_Task(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)

	assert.Equal(t, "Buffer", task.Name())
	assert.True(t, task.IsAsynchronous())
	assert.Len(t, task.Info.Parameters, 3)
	assert.Equal(t, fake.url(bufferPath), task.URL())
}

func TestGPServer_Task_NotListed(t *testing.T) {
	fake := newFakeArcGIS(t)
	fake.json(toolsPath, `{"tasks":["Buffer"]}`)

	service, err := fake.factory().CreateService(context.Background(), fake.url(toolsPath), WithVersion(10.91))
	require.NoError(t, err)

	_, err = service.(Geoprocessor).Task(context.Background(), "Clip")
	assert.ErrorIs(t, err, arcgisDomain.ErrTaskNotFound)
	assert.Equal(t, 0, fake.hitCount(toolsPath+"/Clip"))
}

func TestGPTask_Execute(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionSynchronous)
	fake.json(bufferPath+"/execute", `{"results":[
		{"paramName":"Output","dataType":"GPFeatureRecordSetLayer","value":{"geometryType":"esriGeometryPolygon","features":[]}},
		{"paramName":"Count","dataType":"GPLong","value":7}
	],"messages":[{"type":"esriJobMessageTypeInformative","description":"done"}]}`)

	result, err := task.Execute(context.Background(), bufferInputs())
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.IsType(t, arcgisDomain.GPFeatureRecordSetLayer{}, result.Results[0].Value)
	assert.Equal(t, arcgisDomain.GPLong(7), result.Results[1].Value)
	require.Len(t, result.Messages, 1)

	sent := fake.lastRequest(bufferPath + "/execute")
	assert.JSONEq(t, `{"distance":5,"units":"esriMiles"}`, sent.Get("Distance"))
	assert.Equal(t, "wells", sent.Get("Label"))
}

func TestGPTask_ExecuteAsync(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		fake := newFakeArcGIS(t)
		task := newTestTask(t, fake, arcgisDomain.ExecutionSynchronous)
		fake.json(bufferPath+"/execute", `{"results":[{"paramName":"Count","dataType":"GPLong","value":1}]}`)

		completed := make(chan *arcgisDomain.GPExecuteResult, 1)
		task.ExecuteAsync(context.Background(), bufferInputs(), ExecuteHandler{
			ExecuteCompleted: func(r *arcgisDomain.GPExecuteResult) { completed <- r },
			Failed:           func(err error) { t.Errorf("unexpected failure: %v", err) },
		})

		select {
		case r := <-completed:
			assert.Len(t, r.Results, 1)
		case <-time.After(5 * time.Second):
			t.Fatal("ExecuteCompleted not called")
		}
	})

	t.Run("failed", func(t *testing.T) {
		fake := newFakeArcGIS(t)
		task := newTestTask(t, fake, arcgisDomain.ExecutionSynchronous)
		fake.json(bufferPath+"/execute", `{"error":{"code":400,"message":"Invalid value for Distance"}}`)

		failed := make(chan error, 1)
		task.ExecuteAsync(context.Background(), bufferInputs(), ExecuteHandler{
			ExecuteCompleted: func(*arcgisDomain.GPExecuteResult) { t.Error("unexpected completion") },
			Failed:           func(err error) { failed <- err },
		})

		select {
		case err := <-failed:
			assert.ErrorIs(t, err, apperrors.ErrRemoteRejected)
		case <-time.After(5 * time.Second):
			t.Fatal("Failed not called")
		}
	})
}

func TestGPTask_SubmitJob_Completes(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/submitJob", `{"jobId":"j1","jobStatus":"esriJobSubmitted"}`)

	var polls atomic.Int32
	fake.handle(bufferPath+"/jobs/j1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"jobId":"j1","jobStatus":"esriJobExecuting"}`))
			return
		}
		_, _ = w.Write([]byte(`{"jobId":"j1","jobStatus":"esriJobSucceeded",
			"results":{"Output":{"paramUrl":"results/Output"}}}`))
	})

	events := &jobEvents{}
	job, err := task.SubmitJob(context.Background(), bufferInputs(), events.handler())
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)

	waitJob(t, job)

	statuses, completed, failed := events.snapshot()
	assert.Equal(t, []arcgisDomain.JobStatus{
		arcgisDomain.JobSubmitted,
		arcgisDomain.JobExecuting,
		arcgisDomain.JobSucceeded,
	}, statuses)
	require.Len(t, completed, 1)
	assert.Empty(t, failed)
	assert.Equal(t, "results/Output", completed[0].Results["Output"].ParamURL)
	assert.Equal(t, arcgisDomain.JobSucceeded, job.Status())
	assert.NoError(t, job.Err())
	assert.Equal(t, int32(2), polls.Load())
}

func TestGPTask_SubmitJob_TerminalOnSubmit(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/submitJob", `{"jobId":"j2","jobStatus":"esriJobFailed",
		"messages":[{"type":"esriJobMessageTypeError","description":"bad input"}]}`)

	events := &jobEvents{}
	job, err := task.SubmitJob(context.Background(), bufferInputs(), events.handler())
	require.NoError(t, err)
	waitJob(t, job)

	_, completed, failed := events.snapshot()
	require.Len(t, completed, 1)
	assert.Equal(t, arcgisDomain.JobFailed, completed[0].Status)
	assert.Empty(t, failed)
	assert.Equal(t, 0, fake.hitCount(bufferPath+"/jobs/j2"))
}

func TestGPTask_SubmitJob_PollError(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/submitJob", `{"jobId":"j3","jobStatus":"esriJobSubmitted"}`)
	fake.handle(bufferPath+"/jobs/j3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	events := &jobEvents{}
	job, err := task.SubmitJob(context.Background(), bufferInputs(), events.handler())
	require.NoError(t, err)
	waitJob(t, job)

	_, completed, failed := events.snapshot()
	assert.Empty(t, completed)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], apperrors.ErrUnreachable)
	assert.ErrorIs(t, job.Err(), apperrors.ErrUnreachable)
}

func TestGPTask_SubmitJob_PollCeiling(t *testing.T) {
	fake := newFakeArcGIS(t)
	fake.json(toolsPath, `{"tasks":["Buffer"]}`)
	fake.json(bufferPath, `{"name":"Buffer","executionType":"esriExecutionTypeAsynchronous"}`)
	fake.json(bufferPath+"/submitJob", `{"jobId":"j4","jobStatus":"esriJobSubmitted"}`)
	fake.json(bufferPath+"/jobs/j4", `{"jobId":"j4","jobStatus":"esriJobExecuting"}`)

	factory := fake.factory(WithJobPolling(5*time.Millisecond, 50*time.Millisecond))
	service, err := factory.CreateService(context.Background(), fake.url(toolsPath), WithVersion(10.91))
	require.NoError(t, err)
	task, err := service.(Geoprocessor).Task(context.Background(), "Buffer")
	require.NoError(t, err)

	events := &jobEvents{}
	job, err := task.SubmitJob(context.Background(), bufferInputs(), events.handler())
	require.NoError(t, err)
	waitJob(t, job)

	_, completed, failed := events.snapshot()
	assert.Empty(t, completed)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], arcgisDomain.ErrPollTimeout)
	assert.ErrorIs(t, failed[0], apperrors.ErrUnreachable)
	assert.Equal(t, arcgisDomain.JobExecuting, job.Status())
}

func TestGPTask_SubmitJob_Cancel(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/submitJob", `{"jobId":"j5","jobStatus":"esriJobSubmitted"}`)
	fake.json(bufferPath+"/jobs/j5", `{"jobId":"j5","jobStatus":"esriJobExecuting"}`)

	executing := make(chan struct{})
	var once sync.Once
	events := &jobEvents{}
	handler := events.handler()
	recordStatus := handler.StatusUpdated
	handler.StatusUpdated = func(info arcgisDomain.JobInfo) {
		recordStatus(info)
		if info.Status == arcgisDomain.JobExecuting {
			once.Do(func() { close(executing) })
		}
	}

	job, err := task.SubmitJob(context.Background(), bufferInputs(), handler)
	require.NoError(t, err)

	select {
	case <-executing:
	case <-time.After(5 * time.Second):
		t.Fatal("job never reported executing")
	}
	job.Cancel()
	job.Cancel()
	waitJob(t, job)

	_, completed, failed := events.snapshot()
	assert.Empty(t, completed)
	require.Len(t, failed, 1)
	assert.True(t, errors.Is(failed[0], context.Canceled))
}

func TestGPTask_SubmitJob_ContextCancelled(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/submitJob", `{"jobId":"j6","jobStatus":"esriJobSubmitted"}`)
	fake.json(bufferPath+"/jobs/j6", `{"jobId":"j6","jobStatus":"esriJobWaiting"}`)

	ctx, cancel := context.WithCancel(context.Background())
	events := &jobEvents{}
	job, err := task.SubmitJob(ctx, bufferInputs(), events.handler())
	require.NoError(t, err)

	cancel()
	info, err := job.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "j6", info.JobID)

	_, completed, failed := events.snapshot()
	assert.Empty(t, completed)
	assert.Len(t, failed, 1)
}

func TestGPTask_SubmitJob_SubmissionFailure(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/submitJob", `{"jobStatus":"esriJobSubmitted"}`)

	events := &jobEvents{}
	job, err := task.SubmitJob(context.Background(), bufferInputs(), events.handler())
	assert.Error(t, err)
	assert.Nil(t, job)

	statuses, completed, failed := events.snapshot()
	assert.Empty(t, statuses)
	assert.Empty(t, completed)
	assert.Empty(t, failed)
}

func TestGPTask_CancelJob(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/jobs/j7/cancel", `{"jobId":"j7","jobStatus":"esriJobCancelling"}`)

	info, err := task.CancelJob(context.Background(), "j7")
	require.NoError(t, err)
	assert.Equal(t, arcgisDomain.JobCancelling, info.Status)

	_, err = task.CancelJob(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGPTask_GetResultData(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/jobs/j1/results/Report", `{"paramName":"Report","dataType":"GPDataFile",
		"value":{"url":"https://gis.example.com/arcgis/rest/directories/arcgisjobs/report.pdf"}}`)
	fake.json(bufferPath+"/jobs/j1/results/Unknown", `{"paramName":"Unknown","dataType":"GPSomethingNew",
		"value":{"url":"https://gis.example.com/out.tif","format":"tif"}}`)

	report, err := task.GetResultData(context.Background(), "j1", "Report")
	require.NoError(t, err)
	assert.Equal(t, arcgisDomain.GPDataFile{URL: "https://gis.example.com/arcgis/rest/directories/arcgisjobs/report.pdf"}, report.Value)

	unknown, err := task.GetResultData(context.Background(), "j1", "Unknown")
	require.NoError(t, err)
	assert.Equal(t, arcgisDomain.GPRasterData{URL: "https://gis.example.com/out.tif", Format: "tif"}, unknown.Value)

	_, err = task.GetResultData(context.Background(), "", "Report")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGPTask_GetResultImage(t *testing.T) {
	fake := newFakeArcGIS(t)
	task := newTestTask(t, fake, arcgisDomain.ExecutionAsynchronous)
	fake.json(bufferPath+"/jobs/j1/results/Output", `{"paramName":"Output","dataType":"GPFeatureRecordSetLayer",
		"value":{"mapImage":{"href":"https://gis.example.com/out.png","width":400,"height":300,"scale":5000}}}`)

	result, err := task.GetResultImage(context.Background(), "j1", "Output", ImageOptions{OutSR: 3857})
	require.NoError(t, err)

	image, ok := result.Value.(arcgisDomain.GPMapImage)
	require.True(t, ok)
	assert.Equal(t, "https://gis.example.com/out.png", image.Href)
	assert.Equal(t, 400, image.Width)
	assert.Equal(t, "GPFeatureRecordSetLayer", result.DataType)

	sent := fake.lastRequest(bufferPath + "/jobs/j1/results/Output")
	assert.Equal(t, "image", sent.Get("returnType"))
	assert.Equal(t, "3857", sent.Get("env:outSR"))
}
