package tone_test

import (
	"context"
	"strings"
	"testing"

	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/tone"
)

type fakeChat struct {
	content  string
	lastUser string
}

func (f *fakeChat) Model() string { return "fake-chat" }
func (f *fakeChat) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature *float64) (*llm.ChatResponse, error) {
	f.lastUser = userPrompt
	return &llm.ChatResponse{Content: f.content}, nil
}

func TestAnnotateOrdersChaptersAndParsesUtterances(t *testing.T) {
	chat := &fakeChat{content: "Host1: [calm] Welcome back. Host2: [excited] Let's dive in!"}
	a := agent.New("tone_annotator", nil, chat, nil)
	ann := tone.New(a)

	scripts := []domain.ChapterScript{
		{ChapterNumber: 2, Markdown: "host2: second chapter line"},
		{ChapterNumber: 1, Markdown: "host1: first chapter line"},
	}

	script, err := ann.Annotate(context.Background(), scripts, domain.Brief{Mood: "upbeat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := strings.Index(chat.lastUser, "## Chapter 1")
	second := strings.Index(chat.lastUser, "## Chapter 2")
	if first < 0 || second < 0 || first > second {
		t.Errorf("expected chapters joined in chapter order, got prompt %q", chat.lastUser)
	}
	if len(script.Utterances) == 0 {
		t.Fatal("expected at least one parsed utterance")
	}
	for _, u := range script.Utterances {
		if err := tone.ValidateUtterance(u); err != nil {
			t.Errorf("invalid utterance: %v", err)
		}
	}
}

func TestAnnotateFailsOnEmptyModelOutput(t *testing.T) {
	chat := &fakeChat{content: "no recognizable dialogue here at all"}
	a := agent.New("tone_annotator", nil, chat, nil)
	ann := tone.New(a)

	_, err := ann.Annotate(context.Background(), []domain.ChapterScript{{ChapterNumber: 1, Markdown: "x"}}, domain.Brief{})
	if err == nil {
		t.Fatal("expected error when no utterances can be parsed")
	}
}
