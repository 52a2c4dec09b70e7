// Package service implements the transport-agnostic Job-API facade
// (spec.md §6): submit/status/artifacts/cancel/list/validate. It owns
// cross-job concurrency admission, enforcing jobs.maxConcurrent with a
// buffered semaphore channel (spec.md §5/§9 Open Question).
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/castlight-audio/podcastgen/core/config"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/orchestrator"
	"github.com/castlight-audio/podcastgen/internal/registry"
)

type Service struct {
	Registry     *registry.Registry
	Orchestrator *orchestrator.Orchestrator
	Constraints  config.ConstraintsConfig
	AllowedSets  config.AllowedSetsConfig
	Performance  config.PerformanceConfig
	admission    chan struct{}
}

func New(reg *registry.Registry, orch *orchestrator.Orchestrator, cfg config.Config) *Service {
	maxConcurrent := cfg.Jobs.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		Registry:     reg,
		Orchestrator: orch,
		Constraints:  cfg.Constraints,
		AllowedSets:  cfg.AllowedSets,
		Performance:  cfg.Performance,
		admission:    make(chan struct{}, maxConcurrent),
	}
}

// Validate runs the Brief's standalone validation pass (spec.md §6
// validate()) without creating a job.
func (s *Service) Validate(brief domain.Brief) (domain.ValidationResult, error) {
	result, stageErr := domain.Validate(brief, s.Constraints, s.AllowedSets, s.Performance)
	if stageErr != nil {
		return result, stageErr
	}
	return result, nil
}

// Submit validates the brief, registers a queued Job, and — once an
// admission slot is free — hands it to the Orchestrator in its own
// goroutine. Validation failures never create a job (spec.md §8 testable
// property: "validation rejects before job creation").
func (s *Service) Submit(ctx context.Context, brief domain.Brief) (*domain.Job, error) {
	if _, err := s.Validate(brief); err != nil {
		return nil, err
	}

	job := domain.NewJob(brief)
	s.Registry.Create(job)

	go s.runWhenAdmitted(job.ID)

	return job, nil
}

func (s *Service) runWhenAdmitted(jobID uuid.UUID) {
	s.admission <- struct{}{}
	defer func() { <-s.admission }()

	if job, ok := s.Registry.Get(jobID); ok && job.State == domain.JobStateCancelled {
		return
	}

	s.Orchestrator.Run(context.Background(), jobID)
}

// Status returns the current snapshot for one job.
func (s *Service) Status(jobID uuid.UUID) (domain.Job, error) {
	job, ok := s.Registry.Get(jobID)
	if !ok {
		return domain.Job{}, fmt.Errorf("job %s not found", jobID)
	}
	return job, nil
}

// Artifacts returns a completed (or in-progress) job's accumulated
// artifacts, regardless of terminal state.
func (s *Service) Artifacts(jobID uuid.UUID) (domain.Artifacts, error) {
	job, ok := s.Registry.Get(jobID)
	if !ok {
		return domain.Artifacts{}, fmt.Errorf("job %s not found", jobID)
	}
	return job.Artifacts, nil
}

// Cancel requests cancellation; idempotent on already-terminal jobs
// (spec.md §8).
func (s *Service) Cancel(jobID uuid.UUID) error {
	if err := s.Registry.Cancel(jobID); err != nil {
		return err
	}
	slog.Info("service: job cancellation requested", "job_id", jobID)
	return nil
}

// List returns reduced Summary views of every known job.
func (s *Service) List() []domain.Summary {
	return s.Registry.List()
}
