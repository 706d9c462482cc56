package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"diet-planner-api/internal/domain"
	"diet-planner-api/internal/domain/model"
	"diet-planner-api/internal/domain/ports/repository"
	"diet-planner-api/internal/infra/metrics"
	"diet-planner-api/internal/usecase"
)

// DietJobProcessor leases generation jobs and drives them to a terminal
// state. Generation itself never fails a job — the generator always
// yields a plan — so the only failure path is persisting the result.
type DietJobProcessor struct {
	queue     repository.JobQueue
	plans     repository.PlanRepository
	generator *usecase.PlanGenerator
	workerID  string
	poll      time.Duration
	log       *zerolog.Logger
}

func NewDietJobProcessor(
	queue repository.JobQueue,
	plans repository.PlanRepository,
	generator *usecase.PlanGenerator,
	poll time.Duration,
	log *zerolog.Logger,
) *DietJobProcessor {
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &DietJobProcessor{
		queue:     queue,
		plans:     plans,
		generator: generator,
		workerID:  uuid.NewString(),
		poll:      poll,
		log:       log,
	}
}

// Start runs a loop that polls for jobs and hands them to the pool.
// This should be run in a goroutine.
func (p *DietJobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Str("worker_id", p.workerID).Msg("diet job processor started")
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("diet job processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				p.processOne(ctx)
				return nil
			})
		}
	}
}

func (p *DietJobProcessor) processOne(ctx context.Context) {
	job, err := p.queue.Lease(ctx, p.workerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error().Err(err).Msg("failed to lease job")
		}
		return // nothing leasable, or a transient queue error
	}

	p.log.Info().Str("job_id", job.ID).Str("user_id", job.Request.UserID).
		Int("attempt", job.Attempts).Msg("processing diet job")
	start := time.Now()

	err = p.handleJob(ctx, job)
	elapsed := time.Since(start)

	status := model.JobStatusCompleted
	if err != nil {
		status = model.JobStatusFailed
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("diet job failed")
	}
	metrics.IncJob(string(status))
	metrics.ObserveJobProcessing(int(elapsed / time.Millisecond))
	p.log.Info().Str("job_id", job.ID).Str("status", string(status)).
		Dur("duration", elapsed).Msg("diet job finished")
}

// handleJob produces a plan and persists it, then marks the job terminal.
// The terminal transition uses a background-derived context so a shutdown
// mid-job still records the outcome.
func (p *DietJobProcessor) handleJob(ctx context.Context, job *model.Job) error {
	outcome := p.generator.Produce(ctx, job.Request.Profile)

	rec, err := model.NewPlanRecord(job.Request.UserID, outcome.Plan)
	if err != nil {
		// Marshal of a validated plan cannot realistically fail, but if it
		// does the job must not hang in active.
		return p.failJob(job, fmt.Sprintf("serialize plan: %v", err))
	}

	if err := p.plans.Save(ctx, nil, rec); err != nil {
		return p.failJob(job, fmt.Sprintf("persist plan: %v", err))
	}

	if err := p.queue.Complete(context.Background(), job.ID, p.workerID, rec.PlanData); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	p.log.Debug().Str("job_id", job.ID).Str("source", string(outcome.Source)).Msg("plan persisted")
	return nil
}

func (p *DietJobProcessor) failJob(job *model.Job, reason string) error {
	if err := p.queue.Fail(context.Background(), job.ID, p.workerID, reason); err != nil {
		return fmt.Errorf("fail job (%s): %w", reason, err)
	}
	return errors.New(reason)
}
