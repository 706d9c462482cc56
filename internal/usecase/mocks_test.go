package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
)

// ---- Fakes ----

// memJobQueue is an in-memory JobQueue with the same leasing semantics as
// the Postgres implementation, minus durability.
type memJobQueue struct {
	mu          sync.Mutex
	jobs        map[string]*model.Job
	leaseTTL    time.Duration
	maxAttempts int
	submitErr   error
}

func newMemJobQueue() *memJobQueue {
	return &memJobQueue{
		jobs:        make(map[string]*model.Job),
		leaseTTL:    time.Minute,
		maxAttempts: 3,
	}
}

func (q *memJobQueue) Submit(ctx context.Context, req model.GenerationRequest) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.submitErr != nil {
		return "", q.submitErr
	}
	now := time.Now()
	job := &model.Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q.jobs[job.ID] = job
	return job.ID, nil
}

func (q *memJobQueue) Lease(ctx context.Context, workerID string) (*model.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]string, 0, len(q.jobs))
	for id := range q.jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return q.jobs[ids[i]].CreatedAt.Before(q.jobs[ids[j]].CreatedAt)
	})

	now := time.Now()
	for _, id := range ids {
		j := q.jobs[id]
		leasable := j.Status == model.JobStatusQueued ||
			(j.Status == model.JobStatusActive && j.LeasedUntil.Before(now))
		if !leasable {
			continue
		}
		j.Attempts++
		if j.Attempts > q.maxAttempts {
			j.Status = model.JobStatusFailed
			j.Reason = "abandoned after too many attempts"
			return nil, domain.ErrNotFound
		}
		j.Status = model.JobStatusActive
		j.WorkerID = workerID
		j.LeasedUntil = now.Add(q.leaseTTL)
		j.UpdatedAt = now
		cp := *j
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (q *memJobQueue) Complete(ctx context.Context, jobID, workerID string, result []byte) error {
	return q.finish(jobID, workerID, func(j *model.Job) {
		j.Status = model.JobStatusCompleted
		j.Result = result
	})
}

func (q *memJobQueue) Fail(ctx context.Context, jobID, workerID, reason string) error {
	return q.finish(jobID, workerID, func(j *model.Job) {
		j.Status = model.JobStatusFailed
		j.Reason = reason
	})
}

func (q *memJobQueue) finish(jobID, workerID string, apply func(*model.Job)) error {
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

func (q *memJobQueue) Get(ctx context.Context, jobID string) (*model.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// expire simulates retention reclaiming a job record.
func (q *memJobQueue) expire(jobID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.jobs, jobID)
}

// memPlanRepo is an in-memory append-only PlanRepository.
type memPlanRepo struct {
	mu      sync.Mutex
	recs    []*model.PlanRecord
	saveErr error
}

func (r *memPlanRepo) Save(ctx context.Context, tx repository.Tx, rec *model.PlanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	cp := *rec
	r.recs = append(r.recs, &cp)
	return nil
}

func (r *memPlanRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.PlanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.PlanRecord
	for _, rec := range r.recs {
		if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *memPlanRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PlanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PlanRecord
	for _, rec := range r.recs {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// memProfileRepo is an in-memory ProfileRepository.
type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (r *memProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *memProfileRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// fakeProvider returns a scripted reply or error.
type fakeProvider struct {
	reply string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
