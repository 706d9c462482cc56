package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
)

// fakeQueue is a minimal in-memory JobQueue for processor tests.
type fakeQueue struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{jobs: make(map[string]*model.Job)}
}

func (q *fakeQueue) Submit(ctx context.Context, req model.GenerationRequest) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	job := &model.Job{ID: uuid.NewString(), Request: req, Status: model.JobStatusQueued, CreatedAt: now, UpdatedAt: now}
	q.jobs[job.ID] = job
	return job.ID, nil
}

func (q *fakeQueue) Lease(ctx context.Context, workerID string) (*model.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.Status == model.JobStatusQueued {
			j.Status = model.JobStatusActive
			j.WorkerID = workerID
			j.Attempts++
			j.LeasedUntil = time.Now().Add(time.Minute)
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (q *fakeQueue) Complete(ctx context.Context, jobID, workerID string, result []byte) error {
	return q.finish(jobID, workerID, func(j *model.Job) {
		j.Status = model.JobStatusCompleted
		j.Result = result
	})
}

func (q *fakeQueue) Fail(ctx context.Context, jobID, workerID, reason string) error {
	return q.finish(jobID, workerID, func(j *model.Job) {
		j.Status = model.JobStatusFailed
		j.Reason = reason
	})
}

func (q *fakeQueue) finish(jobID, workerID string, apply func(*model.Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status.Terminal() {
		return domain.ErrTerminalState
	}
	if j.Status != model.JobStatusActive || j.WorkerID != workerID {
		return domain.ErrNotLeaseHolder
	}
	apply(j)
	j.UpdatedAt = time.Now()
	return nil
}

func (q *fakeQueue) Get(ctx context.Context, jobID string) (*model.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// fakePlanRepo records saves and can be told to fail.
type fakePlanRepo struct {
	mu      sync.Mutex
	saved   []*model.PlanRecord
	saveErr error
}

func (r *fakePlanRepo) Save(ctx context.Context, tx repository.Tx, rec *model.PlanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *rec
	r.saved = append(r.saved, &cp)
	return nil
}

func (r *fakePlanRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PlanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].UserID == userID {
			cp := *r.saved[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePlanRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PlanRecord, error) {
	return nil, nil
}
