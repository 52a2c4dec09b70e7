package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/agent"
)

type fakeThread struct {
	available bool
	err       error
	content   string
	calls     int
}

func (f *fakeThread) Available() bool { return f.available }
func (f *fakeThread) Model() string   { return "fake-thread" }
func (f *fakeThread) RunAndWait(ctx context.Context, systemPrompt, userPrompt string) (*llm.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.content}, nil
}

type fakeChat struct {
	err     error
	content string
	calls   int
}

func (f *fakeChat) Model() string { return "fake-chat" }
func (f *fakeChat) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature *float64) (*llm.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.content}, nil
}

func TestExecutePrefersThreadWhenAvailable(t *testing.T) {
	thread := &fakeThread{available: true, content: "from thread"}
	chat := &fakeChat{content: "from chat"}
	a := agent.New("planner", thread, chat, nil)

	got, err := a.Execute(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from thread" {
		t.Errorf("got %q, want from thread", got)
	}
	if chat.calls != 0 {
		t.Errorf("chat backend should not be called when thread succeeds, got %d calls", chat.calls)
	}
}

func TestExecuteFallsThroughWhenThreadUnavailable(t *testing.T) {
	thread := &fakeThread{available: false}
	chat := &fakeChat{content: "from chat"}
	a := agent.New("planner", thread, chat, nil)

	got, err := a.Execute(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from chat" {
		t.Errorf("got %q, want from chat", got)
	}
}

func TestExecuteFallsThroughOnThreadFailure(t *testing.T) {
	thread := &fakeThread{available: true, err: &llm.ErrNonRetryable{Err: errors.New("run failed")}}
	chat := &fakeChat{content: "from chat"}
	a := agent.New("planner", thread, chat, nil)

	got, err := a.Execute(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from chat" {
		t.Errorf("got %q, want from chat after thread soft-failure", got)
	}
}

func TestExecuteSurfacesStageErrorOnExhaustedChatRetries(t *testing.T) {
	chat := &fakeChat{err: errors.New("persistent network error")}
	a := agent.New("planner", nil, chat, nil)

	_, err := a.Execute(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error")
	}
	if chat.calls != 3 {
		t.Errorf("expected 3 retry attempts, got %d", chat.calls)
	}
}
