package editor_test

import (
	"context"
	"testing"

	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/editor"
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

func TestEditAcceptsWithinToleranceWithoutCallingModel(t *testing.T) {
	chat := &fakeChat{}
	a := agent.New("editor", nil, chat, nil)
	e := editor.New(a)

	md := "host1: [calm] this line has exactly twelve words right here for testing purposes today\n" +
		"host2: [curious] and this second line adds eight more words\n"
	tone := domain.ToneScript{Markdown: md}
	budget := domain.WordBudget{TotalWords: 20, PerChapter: 20, TolerancePercent: 2}

	final, warnings, err := e.Edit(context.Background(), tone, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.calls != 0 {
		t.Errorf("expected no model calls when already within tolerance, got %d", chat.calls)
	}
	_ = final
	_ = warnings
}

func TestEditRejectsImplausiblyShortScript(t *testing.T) {
	chat := &fakeChat{content: "too short"}
	a := agent.New("editor", nil, chat, nil)
	e := editor.New(a)

	tone := domain.ToneScript{Markdown: "host1: [calm] hi"}
	budget := domain.WordBudget{TotalWords: 1000, PerChapter: 1000, TolerancePercent: 2}

	_, _, err := e.Edit(context.Background(), tone, budget)
	if err == nil {
		t.Fatal("expected validation error for implausibly short script")
	}
}

func TestEditWarnsWithoutFailingOnLenientDeviation(t *testing.T) {
	longBody := "host1: [calm] "
	for i := 0; i < 120; i++ {
		longBody += "word "
	}
	chat := &fakeChat{content: longBody}
	a := agent.New("editor", nil, chat, nil)
	e := editor.New(a)

	tone := domain.ToneScript{Markdown: "host1: [calm] short line of seven words total here"}
	budget := domain.WordBudget{TotalWords: 100, PerChapter: 100, TolerancePercent: 2}

	final, warnings, err := e.Edit(context.Background(), tone, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.DeviationPercent <= 15.0 {
		t.Skip("convergence landed within lenient threshold; warning path not exercised")
	}
	if len(warnings) == 0 {
		t.Error("expected a deviation warning, got none")
	}
}
