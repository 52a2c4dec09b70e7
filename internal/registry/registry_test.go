package registry_test

import (
	"sync"
	"testing"

	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/registry"
)

func TestTransitionRejectsIllegalEdge(t *testing.T) {
	r := registry.New()
	job := domain.NewJob(domain.Brief{Topic: "x"})
	r.Create(job)

	if err := r.Transition(job.ID, domain.JobStateCompleted, nil); err == nil {
		t.Fatal("expected error transitioning directly from queued to completed")
	}

	got, ok := r.Get(job.ID)
	if !ok {
		t.Fatal("expected job to exist")
	}
	if got.State != domain.JobStateQueued {
		t.Errorf("state = %v, want still queued after rejected transition", got.State)
	}
}

func TestTransitionAllowsLegalEdges(t *testing.T) {
	r := registry.New()
	job := domain.NewJob(domain.Brief{Topic: "x"})
	r.Create(job)

	if err := r.Transition(job.ID, domain.JobStateProcessing, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Transition(job.ID, domain.JobStateCompleted, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := r.Get(job.ID)
	if got.State != domain.JobStateCompleted {
		t.Errorf("state = %v, want completed", got.State)
	}
}

func TestCancelIsIdempotentOnTerminalJob(t *testing.T) {
	r := registry.New()
	job := domain.NewJob(domain.Brief{Topic: "x"})
	r.Create(job)

	if err := r.Transition(job.ID, domain.JobStateProcessing, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Transition(job.ID, domain.JobStateCompleted, nil); err != nil {
		t.Fatal(err)
	}

	if err := r.Cancel(job.ID); err != nil {
		t.Fatalf("cancelling a completed job should be a no-op, got error: %v", err)
	}
	got, _ := r.Get(job.ID)
	if got.State != domain.JobStateCompleted {
		t.Errorf("state = %v, want unchanged completed", got.State)
	}
}

func TestGetReturnsCopyNotLivePointer(t *testing.T) {
	r := registry.New()
	job := domain.NewJob(domain.Brief{Topic: "x"})
	r.Create(job)

	snapshot, _ := r.Get(job.ID)
	snapshot.State = domain.JobStateCompleted

	got, _ := r.Get(job.ID)
	if got.State != domain.JobStateQueued {
		t.Errorf("mutating a Get() snapshot leaked into the registry: state = %v", got.State)
	}
}

func TestConcurrentAccessIsRaceFree(t *testing.T) {
	r := registry.New()
	job := domain.NewJob(domain.Brief{Topic: "x"})
	r.Create(job)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Get(job.ID)
			r.List()
			r.UpdateProgress(job.ID, "planning", 1)
		}()
	}
	wg.Wait()
}
