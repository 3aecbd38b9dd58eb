package domain

import (
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// JobStatus is the server-side state of an asynchronous geoprocessing job.
type JobStatus int

// Job statuses.
const (
	JobNew JobStatus = iota
	JobSubmitted
	JobWaiting
	JobExecuting
	JobSucceeded
	JobFailed
	JobTimedOut
	JobCancelling
	JobCancelled
	JobDeleting
	JobDeleted
)

var jobStatusNames = []string{
	JobNew:        "New",
	JobSubmitted:  "Submitted",
	JobWaiting:    "Waiting",
	JobExecuting:  "Executing",
	JobSucceeded:  "Succeeded",
	JobFailed:     "Failed",
	JobTimedOut:   "TimedOut",
	JobCancelling: "Cancelling",
	JobCancelled:  "Cancelled",
	JobDeleting:   "Deleting",
	JobDeleted:    "Deleted",
}

// jobTransitions lists the statuses reachable from each status. Staying in
// the same status is always allowed.
var jobTransitions = map[JobStatus][]JobStatus{
	JobNew:        {JobSubmitted, JobFailed},
	JobSubmitted:  {JobWaiting, JobExecuting, JobSucceeded, JobFailed, JobTimedOut, JobCancelling, JobCancelled},
	JobWaiting:    {JobExecuting, JobSucceeded, JobFailed, JobTimedOut, JobCancelling, JobCancelled},
	JobExecuting:  {JobSucceeded, JobFailed, JobTimedOut, JobCancelling, JobCancelled},
	JobCancelling: {JobCancelled, JobFailed},
	JobSucceeded:  {JobDeleting},
	JobFailed:     {JobDeleting},
	JobTimedOut:   {JobDeleting},
	JobCancelled:  {JobDeleting},
	JobDeleting:   {JobDeleted},
	JobDeleted:    {},
}

// String returns the short status name, e.g. "Succeeded".
func (s JobStatus) String() string {
	if s < 0 || int(s) >= len(jobStatusNames) {
		return "Unknown"
	}
	return jobStatusNames[s]
}

// ArcGISName returns the wire name, e.g. "esriJobSucceeded".
func (s JobStatus) ArcGISName() string {
	return "esriJob" + s.String()
}

// IsTerminal reports whether the server will not move the job on by itself.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobSucceeded, JobFailed, JobTimedOut, JobCancelled, JobDeleted:
		return true
	}
	return false
}

// CanTransition reports whether a job may move from s to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	return s == next || slices.Contains(jobTransitions[s], next)
}

// ParseJobStatus resolves s case-insensitively, with or without the "esriJob" prefix.
func ParseJobStatus(s string) (JobStatus, error) {
	key := strings.TrimPrefix(enumKey(s), "job")
	for status, name := range jobStatusNames {
		if strings.ToLower(name) == key {
			return JobStatus(status), nil
		}
	}
	return JobNew, apperrors.Wrapf(ErrInvalidJobStatus, "%q", s)
}

// MarshalJSON writes the ArcGIS wire name.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ArcGISName())
}

// UnmarshalJSON parses a status name permissively.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return apperrors.Wrap(ErrInvalidJobStatus, err.Error())
	}
	status, err := ParseJobStatus(name)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ResultRef points at a job result parameter.
type ResultRef struct {
	ParamURL string `json:"paramUrl"`
}

// JobInfo is the submitJob and job status response document.
type JobInfo struct {
	JobID    string               `json:"jobId"`
	Status   JobStatus            `json:"jobStatus"`
	Messages []GPMessage          `json:"messages,omitempty"`
	Results  map[string]ResultRef `json:"results,omitempty"`
	Inputs   map[string]ResultRef `json:"inputs,omitempty"`
}
