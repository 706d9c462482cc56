package model

import "time"

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition may leave the status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// GenerationRequest is the immutable input to a diet generation job.
// Profile is a snapshot taken at submission time, not a live reference,
// so the job stays reproducible if the profile is edited afterwards.
type GenerationRequest struct {
	UserID  string  `json:"userId"`
	Profile Profile `json:"profile"`
}

// Job is the queue's bookkeeping unit for one generation request.
// Only the worker holding the lease may drive it to a terminal state.
type Job struct {
	ID          string
	Request     GenerationRequest
	Status      JobStatus
	WorkerID    string
	Attempts    int
	Result      []byte // serialised Plan, set only when completed
	Reason      string // failure reason, set only when failed
	LeasedUntil time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ResultPlan deserialises the attached result payload.
func (j *Job) ResultPlan() (*Plan, error) {
	rec := PlanRecord{ID: j.ID, PlanData: j.Result}
	return rec.Plan()
}
