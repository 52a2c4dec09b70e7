package researcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/researcher"
)

type fakeChat struct {
	content string
	calls   int
}

func (f *fakeChat) Model() string { return "fake-chat" }
func (f *fakeChat) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature *float64) (*llm.ChatResponse, error) {
	f.calls++
	return &llm.ChatResponse{Content: f.content}, nil
}

type fakeFetcher struct {
	content *researcher.FetchedContent
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string) (*researcher.FetchedContent, error) {
	f.calls++
	return f.content, f.err
}

var sampleBrief = domain.Brief{Topic: "Bicycles", Chapters: 1}
var samplePlan = domain.Plan{Chapters: []domain.PlanChapter{{Number: 1, ResearchFocus: "origins"}}}

func TestResearchSkipsModelWhenSourceGrounded(t *testing.T) {
	longBody := ""
	for i := 0; i < 60; i++ {
		longBody += "word "
	}
	fetcher := &fakeFetcher{content: &researcher.FetchedContent{
		Title:     "History of Bicycles",
		Content:   longBody,
		WordCount: 60,
		Source:    "file:///tmp/source.md",
	}}
	chat := &fakeChat{content: "## Executive Summary\n## Key Facts\n## Themes\n"}
	a := agent.New("researcher", nil, chat, nil)
	r := researcher.New(a, fetcher)

	brief := sampleBrief
	brief.Source = "file:///tmp/source.md"

	notes, err := r.Research(context.Background(), brief, samplePlan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !notes.SourceGrounded {
		t.Error("expected SourceGrounded = true")
	}
	if chat.calls != 0 {
		t.Errorf("expected zero model calls when source grounding succeeds, got %d", chat.calls)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected exactly one fetch call, got %d", fetcher.calls)
	}
}

func TestResearchFallsBackToModelWhenSourceTooShort(t *testing.T) {
	fetcher := &fakeFetcher{content: &researcher.FetchedContent{
		Title:     "Too short",
		Content:   "only a few words here",
		WordCount: 5,
	}}
	chat := &fakeChat{content: "## Executive Summary\n## Key Facts\n## Themes\n"}
	a := agent.New("researcher", nil, chat, nil)
	r := researcher.New(a, fetcher)

	brief := sampleBrief
	brief.Source = "file:///tmp/short.md"

	notes, err := r.Research(context.Background(), brief, samplePlan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes.SourceGrounded {
		t.Error("expected SourceGrounded = false when source is too short")
	}
	if chat.calls != 1 {
		t.Errorf("expected one model call as fallback, got %d", chat.calls)
	}
}

func TestResearchFallsBackToModelWhenNoSource(t *testing.T) {
	chat := &fakeChat{content: "## Executive Summary\n## Key Facts\n## Themes\n"}
	a := agent.New("researcher", nil, chat, nil)
	r := researcher.New(a, nil)

	notes, err := r.Research(context.Background(), sampleBrief, samplePlan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes.SourceGrounded {
		t.Error("expected SourceGrounded = false with no source")
	}
	if chat.calls != 1 {
		t.Errorf("expected one model call, got %d", chat.calls)
	}
}

func TestResearchFallsBackToModelOnFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("fetch failed")}
	chat := &fakeChat{content: "## Executive Summary\n## Key Facts\n## Themes\n"}
	a := agent.New("researcher", nil, chat, nil)
	r := researcher.New(a, fetcher)

	brief := sampleBrief
	brief.Source = "file:///tmp/missing.md"

	notes, err := r.Research(context.Background(), brief, samplePlan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes.SourceGrounded {
		t.Error("expected SourceGrounded = false on fetch error")
	}
}

func TestResearchFailsWhenSectionsMissing(t *testing.T) {
	chat := &fakeChat{content: "nothing useful here"}
	a := agent.New("researcher", nil, chat, nil)
	r := researcher.New(a, nil)

	_, err := r.Research(context.Background(), sampleBrief, samplePlan)
	if err == nil {
		t.Fatal("expected error when all required sections are missing")
	}
	if domain.KindOf(err) != domain.ErrorKindAgent {
		t.Errorf("expected ErrorKindAgent, got %v", domain.KindOf(err))
	}
}
