package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
	"diet-planner-api/internal/infra/metrics"
)

var _ repository.JobQueue = (*jobQueue)(nil)

// QueueOptions tune leasing and retention behavior.
type QueueOptions struct {
	// LeaseTTL is how long a worker owns an active job before the lease
	// may be taken over by another worker.
	LeaseTTL time.Duration
	// MaxAttempts bounds how many times a job may be leased before the
	// queue fails it instead of handing it out again.
	MaxAttempts int
	// Retention is how long terminal jobs remain visible to Get before
	// the janitor reclaims them.
	Retention time.Duration
	// SweepEvery is the janitor interval.
	SweepEvery time.Duration
}

type jobQueue struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
	opts QueueOptions
	log  *zerolog.Logger
}

func NewJobQueue(pool *pgxpool.Pool, tm repository.TransactionManager, opts QueueOptions, log *zerolog.Logger) *jobQueue {
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 2 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Retention <= 0 {
		opts.Retention = 15 * time.Minute
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = time.Minute
	}
	return &jobQueue{pool: pool, tm: tm, opts: opts, log: log}
}

const jobColumns = `id, user_id, request, status, worker_id, attempts, result, reason, leased_until, created_at, updated_at`

func (q *jobQueue) Submit(ctx context.Context, req model.GenerationRequest) (string, error) {
	reqData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	id := uuid.NewString()
	now := time.Now()
	const sql = `
INSERT INTO diet_jobs (id, user_id, request, status, worker_id, attempts, reason, leased_until, created_at, updated_at)
VALUES ($1, $2, $3, $4, '', 0, '', 'epoch', $5, $5);`

	if _, err := execSQL(ctx, q.pool, nil, sql, id, req.UserID, reqData, model.JobStatusQueued, now); err != nil {
		q.log.Error().Err(err).Str("user_id", req.UserID).Msg("job submit failed")
		return "", domain.ErrQueueUnavailable
	}
	return id, nil
}

// Lease atomically picks one leasable job and hands it to workerID.
// A job is leasable when it is queued, or active with an expired lease.
// Leasing bumps the attempt counter; past MaxAttempts the queue fails the
// job instead of handing it out again, so a poisoned job cannot loop forever.
func (q *jobQueue) Lease(ctx context.Context, workerID string) (*model.Job, error) {
	var leased *model.Job

	err := q.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const pick = `
SELECT ` + jobColumns + `
FROM diet_jobs
WHERE status = 'queued'
   OR (status = 'active' AND leased_until < now())
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, q.pool, tx, pick)
		if err != nil {
			return err
		}
		job, err := scanJob(row)
		if err != nil {
			return err
		}

		if job.Status == model.JobStatusActive {
			// Previous holder went silent past its lease.
			metrics.IncJobRelease()
			q.log.Warn().Str("job_id", job.ID).Str("stale_worker", job.WorkerID).
				Int("attempts", job.Attempts).Msg("re-leasing job with expired lease")
		}

		job.Attempts++
		now := time.Now()

		if job.Attempts > q.opts.MaxAttempts {
			job.Status = model.JobStatusFailed
			job.Reason = fmt.Sprintf("abandoned after %d attempts", job.Attempts-1)
			const giveUp = `
UPDATE diet_jobs SET status=$2, reason=$3, attempts=$4, updated_at=$5 WHERE id=$1;`
			if _, err := execSQL(ctx, q.pool, tx, giveUp, job.ID, job.Status, job.Reason, job.Attempts, now); err != nil {
				return err
			}
			metrics.IncJob(string(model.JobStatusFailed))
			q.log.Error().Str("job_id", job.ID).Msg("job exceeded max attempts, failed")
			// Return nil so the failure commits; leased stays nil.
			return nil
		}

		job.Status = model.JobStatusActive
		job.WorkerID = workerID
		job.LeasedUntil = now.Add(q.opts.LeaseTTL)
		job.UpdatedAt = now

		const claim = `
UPDATE diet_jobs SET status=$2, worker_id=$3, attempts=$4, leased_until=$5, updated_at=$6 WHERE id=$1;`
		if _, err := execSQL(ctx, q.pool, tx, claim, job.ID, job.Status, job.WorkerID, job.Attempts, job.LeasedUntil, job.UpdatedAt); err != nil {
			return err
		}

		leased = job
		return nil
	})

	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if leased == nil {
		// The only picked job blew its attempt budget and was failed.
		return nil, domain.ErrNotFound
	}
	return leased, nil
}

func (q *jobQueue) Complete(ctx context.Context, jobID, workerID string, result []byte) error {
	const sql = `
UPDATE diet_jobs SET status=$3, result=$4, updated_at=now()
WHERE id=$1 AND worker_id=$2 AND status='active';`

	tag, err := execSQL(ctx, q.pool, nil, sql, jobID, workerID, model.JobStatusCompleted, result)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return q.explainRejectedTransition(ctx, jobID, workerID)
	}
	return nil
}

func (q *jobQueue) Fail(ctx context.Context, jobID, workerID, reason string) error {
	const sql = `
UPDATE diet_jobs SET status=$3, reason=$4, updated_at=now()
WHERE id=$1 AND worker_id=$2 AND status='active';`

	tag, err := execSQL(ctx, q.pool, nil, sql, jobID, workerID, model.JobStatusFailed, reason)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return q.explainRejectedTransition(ctx, jobID, workerID)
	}
	return nil
}

// explainRejectedTransition distinguishes why a guarded terminal update
// matched no row: missing job, already-terminal job, or a lease held by
// someone else (a takeover after this worker's lease expired).
func (q *jobQueue) explainRejectedTransition(ctx context.Context, jobID, workerID string) error {
	job, err := q.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return domain.ErrTerminalState
	}
	if job.WorkerID != workerID {
		return domain.ErrNotLeaseHolder
	}
	return domain.ErrOperationFailed
}

func (q *jobQueue) Get(ctx context.Context, jobID string) (*model.Job, error) {
	const sql = `SELECT ` + jobColumns + ` FROM diet_jobs WHERE id=$1;`
	row, err := pickRow(ctx, q.pool, nil, sql, jobID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

// StartJanitor runs the retention sweep until ctx is cancelled. Removing
// terminal jobs is the queue's responsibility; workers never delete rows.
func (q *jobQueue) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(q.opts.SweepEvery)
	defer ticker.Stop()

	q.log.Info().Dur("retention", q.opts.Retention).Msg("job queue janitor started")
	for {
		select {
		case <-ctx.Done():
			q.log.Info().Msg("job queue janitor stopping")
			return
		case <-ticker.C:
			if n, err := q.sweep(ctx); err != nil {
				q.log.Error().Err(err).Msg("retention sweep failed")
			} else if n > 0 {
				q.log.Debug().Int64("reclaimed", n).Msg("retention sweep")
			}
		}
	}
}

func (q *jobQueue) sweep(ctx context.Context) (int64, error) {
	const sql = `
DELETE FROM diet_jobs
WHERE status IN ('completed', 'failed') AND updated_at < now() - $1::interval;`

	tag, err := execSQL(ctx, q.pool, nil, sql, q.opts.Retention.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		j       model.Job
		status  string
		reqData []byte
	)
	err := row.Scan(&j.ID, &j.Request.UserID, &reqData, &status, &j.WorkerID, &j.Attempts,
		&j.Result, &j.Reason, &j.LeasedUntil, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, translateScanErr(err)
	}
	j.Status = model.JobStatus(status)
	if err := json.Unmarshal(reqData, &j.Request); err != nil {
		return nil, fmt.Errorf("unmarshal job request: %w", err)
	}
	return &j, nil
}
