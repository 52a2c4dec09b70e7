package scripter_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/scripter"
)

// fixedWordsChat returns a fixed number of words per chapter regardless of prompt,
// so convergence succeeds on the first attempt for every chapter.
type fixedWordsChat struct {
	wordsPerLine int
}

func (f *fixedWordsChat) Model() string { return "fake-chat" }
func (f *fixedWordsChat) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature *float64) (*llm.ChatResponse, error) {
	line := "host1: "
	for i := 0; i < f.wordsPerLine; i++ {
		line += "word "
	}
	return &llm.ChatResponse{Content: line}, nil
}

func outlineWithChapters(n int) domain.Outline {
	outline := domain.Outline{
		Sections: []domain.OutlineSection{
			{Kind: domain.OutlineSectionOpening},
		},
	}
	for i := 1; i <= n; i++ {
		outline.Sections = append(outline.Sections, domain.OutlineSection{
			Kind:             domain.OutlineSectionChapter,
			ChapterNumber:    i,
			Purpose:          fmt.Sprintf("purpose %d", i),
			DiscussionPoints: []string{"a point"},
		})
	}
	outline.Sections = append(outline.Sections, domain.OutlineSection{Kind: domain.OutlineSectionClosing})
	return outline
}

func TestScriptAllPreservesChapterOrder(t *testing.T) {
	chat := &fixedWordsChat{wordsPerLine: 100}
	a := agent.New("scripter", nil, chat, nil)
	s := scripter.New(a)

	outline := outlineWithChapters(5)
	budget := domain.WordBudget{TotalWords: 500, PerChapter: 100, TolerancePercent: 2}

	scripts, err := s.ScriptAll(context.Background(), outline, domain.Brief{Style: "conversational", Mood: "calm"}, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scripts) != 5 {
		t.Fatalf("expected 5 chapter scripts, got %d", len(scripts))
	}
	for i, script := range scripts {
		if script.ChapterNumber != i+1 {
			t.Errorf("scripts[%d].ChapterNumber = %d, want %d (order must survive concurrent completion)", i, script.ChapterNumber, i+1)
		}
	}
}

func TestScriptAllConvergesWithinTolerance(t *testing.T) {
	chat := &fixedWordsChat{wordsPerLine: 100}
	a := agent.New("scripter", nil, chat, nil)
	s := scripter.New(a)

	outline := outlineWithChapters(1)
	budget := domain.WordBudget{TotalWords: 100, PerChapter: 100, TolerancePercent: 2}

	scripts, err := s.ScriptAll(context.Background(), outline, domain.Brief{Style: "educational", Mood: "calm"}, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scripts[0].DeviationPercent > 2.0 {
		t.Errorf("expected deviation within 2%%, got %.2f", scripts[0].DeviationPercent)
	}
}
