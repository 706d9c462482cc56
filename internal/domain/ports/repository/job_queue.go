package repository

import (
	"context"

	"diet-planner-api/internal/domain/model"
)

// JobQueue is a durable, at-least-once work queue for generation jobs.
//
// Mutual exclusion is the queue's invariant: at most one worker holds an
// active lease on a job at any time. A lease expires after the queue's
// configured TTL, after which the job becomes leasable again; the queue
// bounds retries with an attempt counter and fails the job beyond it.
type JobQueue interface {
	// Submit stores a new job in state queued and returns its identifier.
	// It never blocks on generation. Returns domain.ErrQueueUnavailable
	// when the backing store cannot be reached.
	Submit(ctx context.Context, req model.GenerationRequest) (string, error)

	// Lease atomically selects one leasable job, transitions it to active
	// owned by workerID, and returns it. Returns domain.ErrNotFound when
	// nothing is leasable.
	Lease(ctx context.Context, workerID string) (*model.Job, error)

	// Complete transitions an active job held by workerID to completed,
	// attaching the serialised result. Returns domain.ErrNotLeaseHolder
	// if the job is not leased by the caller.
	Complete(ctx context.Context, jobID, workerID string, result []byte) error

	// Fail transitions an active job held by workerID to failed.
	Fail(ctx context.Context, jobID, workerID, reason string) error

	// Get returns the current job snapshot, or domain.ErrNotFound once
	// retention has reclaimed it.
	Get(ctx context.Context, jobID string) (*model.Job, error)
}
