package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
)

// StatusState is the client-facing state of a generation request.
type StatusState string

const (
	StatusPending   StatusState = "pending"
	StatusCompleted StatusState = "completed"
	StatusFailed    StatusState = "failed"
	StatusNone      StatusState = "none"
)

// StatusResult is the answer to a status query. Plan is set only for
// completed, Reason only for failed.
type StatusResult struct {
	State  StatusState
	Plan   *model.Plan
	Reason string
}

// DietUseCase drives plan generation: submission onto the job queue and
// the tiered status retrieval that bridges queue records and durable
// plan storage.
type DietUseCase struct {
	queue    repository.JobQueue
	plans    repository.PlanRepository
	profiles repository.ProfileRepository
	log      *zerolog.Logger
}

func NewDietUseCase(
	queue repository.JobQueue,
	plans repository.PlanRepository,
	profiles repository.ProfileRepository,
	log *zerolog.Logger,
) *DietUseCase {
	return &DietUseCase{queue: queue, plans: plans, profiles: profiles, log: log}
}

// RequestPlan snapshots the user's profile and submits a generation job.
// The snapshot keeps the job reproducible if the profile changes while
// the job waits in the queue.
func (uc *DietUseCase) RequestPlan(ctx context.Context, userID string) (string, error) {
	profile, err := uc.profiles.FindByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNoProfile
		}
		return "", err
	}

	jobID, err := uc.queue.Submit(ctx, model.GenerationRequest{
		UserID:  userID,
		Profile: *profile,
	})
	if err != nil {
		return "", err
	}

	uc.log.Info().Str("job_id", jobID).Str("user_id", userID).Msg("diet generation queued")
	return jobID, nil
}

// Status answers a poll for jobID on behalf of userID. It is idempotent
// and side-effect free: nothing here mutates queue or store state.
//
// Tier one is the job record; tier two, once retention has reclaimed it,
// is the user's most recent persisted plan. A client polling after expiry
// therefore still sees completed with the same plan it would have seen
// through the in-flight path.
func (uc *DietUseCase) Status(ctx context.Context, jobID, userID string) (*StatusResult, error) {
	job, err := uc.queue.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uc.latestPersisted(ctx, userID)
		}
		return nil, err
	}

	switch job.Status {
	case model.JobStatusQueued, model.JobStatusActive:
		return &StatusResult{State: StatusPending}, nil
	case model.JobStatusCompleted:
		plan, err := job.ResultPlan()
		if err != nil {
			return nil, err
		}
		return &StatusResult{State: StatusCompleted, Plan: plan}, nil
	case model.JobStatusFailed:
		return &StatusResult{State: StatusFailed, Reason: job.Reason}, nil
	default:
		return nil, domain.ErrInvalidArgument
	}
}

func (uc *DietUseCase) latestPersisted(ctx context.Context, userID string) (*StatusResult, error) {
	rec, err := uc.plans.FindLatestByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &StatusResult{State: StatusNone}, nil
		}
		return nil, err
	}
	plan, err := rec.Plan()
	if err != nil {
		return nil, err
	}
	return &StatusResult{State: StatusCompleted, Plan: plan}, nil
}

// History lists the user's persisted plans, newest first.
func (uc *DietUseCase) History(ctx context.Context, userID string, offset, limit int) ([]*model.PlanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.plans.ListByUser(ctx, nil, userID, offset, limit)
}
