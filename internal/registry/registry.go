// Package registry implements the Job Registry (C11): the exclusive owner
// of Job state, behind a single mutex, enforcing the state machine's legal
// transitions on every write (spec.md §4.11).
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/castlight-audio/podcastgen/internal/domain"
)

type Registry struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.Job
}

func New() *Registry {
	return &Registry{jobs: make(map[uuid.UUID]*domain.Job)}
}

// Create registers a freshly built Job under its ID.
func (r *Registry) Create(job *domain.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

// Get returns a copy of the Job's current state, never the live pointer, so
// callers cannot mutate it outside the registry.
func (r *Registry) Get(id uuid.UUID) (domain.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return *job, true
}

// List returns Summary views of every job, newest first.
func (r *Registry) List() []domain.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]domain.Summary, 0, len(r.jobs))
	for _, job := range r.jobs {
		summaries = append(summaries, job.Summary())
	}
	sortSummariesNewestFirst(summaries)
	return summaries
}

func sortSummariesNewestFirst(summaries []domain.Summary) {
	for i := 1; i < len(summaries); i++ {
		for j := i; j > 0 && summaries[j].CreatedAt.After(summaries[j-1].CreatedAt); j-- {
			summaries[j], summaries[j-1] = summaries[j-1], summaries[j]
		}
	}
}

// Transition moves a job to next, rejecting illegal edges (spec.md §4.10
// state machine). mutate is applied under the lock, after the transition is
// validated, so callers can update progress/artifacts atomically with the
// state change.
func (r *Registry) Transition(id uuid.UUID, next domain.JobState, mutate func(job *domain.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if job.State.IsTerminal() || (job.State != next && !job.State.CanTransitionTo(next)) {
		return fmt.Errorf("illegal transition for job %s: %s -> %s", id, job.State, next)
	}

	job.State = next
	if mutate != nil {
		mutate(job)
	}
	return nil
}

// UpdateProgress advances CurrentStep/StepsCompleted without a state
// transition (used while a job remains "processing").
func (r *Registry) UpdateProgress(id uuid.UUID, step string, completed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.CurrentStep = step
	if completed > job.StepsCompleted {
		job.StepsCompleted = completed
	}
	return nil
}

// Mutate applies fn to the live job under the write lock without changing
// its state; a job already in a terminal state is rejected. Used for
// progress bookkeeping (CurrentStep, StepsCompleted, Artifacts) that happens
// alongside, but isn't itself, a state transition.
func (r *Registry) Mutate(id uuid.UUID, fn func(job *domain.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if job.State.IsTerminal() {
		return fmt.Errorf("job %s is in terminal state %s", id, job.State)
	}
	fn(job)
	return nil
}

// Cancel requests cancellation. It is idempotent: cancelling an
// already-terminal job is a no-op, never an error (spec.md §8).
func (r *Registry) Cancel(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if job.State.IsTerminal() {
		return nil
	}
	if !job.State.CanTransitionTo(domain.JobStateCancelled) {
		return fmt.Errorf("job %s cannot be cancelled from state %s", id, job.State)
	}
	job.State = domain.JobStateCancelled
	now := time.Now()
	job.CompletedAt = &now
	return nil
}
