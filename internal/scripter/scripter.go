// Package scripter implements the Scripter (C5): turning outline sections
// into per-chapter dialogue, converging on the word budget and fanning out
// across chapters with bounded parallelism (spec.md §4.5).
//
// The bounded fan-out is grounded on the teacher's executeToolsParallel
// (relay/internal/brain/retriever.go): a buffered channel as a semaphore,
// one goroutine per item, results written into a pre-sized slice by index
// so ordering survives out-of-order completion.
package scripter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/markdown"
)

const stage = "scripter"

// maxConcurrentScripters bounds fan-out across chapters (spec.md §5).
const maxConcurrentScripters = 5

// maxConvergenceAttempts is the retry budget for nudging a chapter's word
// count toward its target before accepting the closest attempt (spec.md §4.5).
const maxConvergenceAttempts = 3

// acceptDeviationPercent is the early-accept threshold within the
// convergence loop; outside it, the loop retries with corrective feedback.
const acceptDeviationPercent = 2.0

type Scripter struct {
	Agent *agent.Agent
}

func New(a *agent.Agent) *Scripter { return &Scripter{Agent: a} }

// ScriptAll fans out one goroutine per chapter, bounded by
// maxConcurrentScripters, and joins results back in chapter order
// regardless of completion order (spec.md §4.5, §5).
func (s *Scripter) ScriptAll(ctx context.Context, outline domain.Outline, brief domain.Brief, budget domain.WordBudget) ([]domain.ChapterScript, error) {
	chapters := chapterSections(outline)
	results := make([]domain.ChapterScript, len(chapters))
	errs := make([]error, len(chapters))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentScripters)

	for i, section := range chapters {
		wg.Add(1)
		go func(idx int, sec domain.OutlineSection) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			script, err := s.scriptChapter(ctx, sec, brief, budget.PerChapter)
			results[idx] = script
			errs[idx] = err
		}(i, section)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// scriptChapter runs the convergence loop for a single chapter: generate,
// measure spoken word count, and if outside tolerance, retry with corrective
// feedback up to maxConvergenceAttempts, keeping the closest attempt.
func (s *Scripter) scriptChapter(ctx context.Context, section domain.OutlineSection, brief domain.Brief, targetWords int) (domain.ChapterScript, error) {
	var best domain.ChapterScript
	bestDeviation := -1.0

	feedback := ""
	for attempt := 1; attempt <= maxConvergenceAttempts; attempt++ {
		system := systemPrompt(brief)
		user := userPrompt(section, brief, targetWords, feedback)

		raw, err := s.Agent.Execute(ctx, system, user)
		if err != nil {
			return domain.ChapterScript{}, err
		}

		spoken := markdown.SpokenWordCountForScript(raw)
		deviation := markdown.DeviationPercent(targetWords, spoken)

		script := domain.ChapterScript{
			ChapterNumber:    section.ChapterNumber,
			Markdown:         raw,
			SpokenWordCount:  spoken,
			TargetWords:      targetWords,
			DeviationPercent: deviation,
		}

		if bestDeviation < 0 || deviation < bestDeviation {
			best, bestDeviation = script, deviation
		}
		if deviation <= acceptDeviationPercent {
			return script, nil
		}

		feedback = correctiveFeedback(targetWords, spoken)
	}

	return best, nil
}

func correctiveFeedback(target, actual int) string {
	if actual < target {
		return fmt.Sprintf("The previous draft ran %d words short of the %d word target. Expand the dialogue with more detail and back-and-forth.", target-actual, target)
	}
	return fmt.Sprintf("The previous draft ran %d words over the %d word target. Condense the dialogue without losing key points.", actual-target, target)
}

func chapterSections(outline domain.Outline) []domain.OutlineSection {
	var chapters []domain.OutlineSection
	for _, s := range outline.Sections {
		if s.Kind == domain.OutlineSectionChapter {
			chapters = append(chapters, s)
		}
	}
	return chapters
}

// styleDirective maps a Brief's style to dialogue-generation guidance,
// falling back to storytelling for an unrecognized or "narrative" style
// (spec.md §4.5 edge case).
func styleDirective(style string) string {
	switch strings.ToLower(style) {
	case "conversational":
		return "Write natural back-and-forth dialogue between two hosts, as if chatting informally."
	case "interview":
		return "Write as an interview: one host asks probing questions, the other answers at length."
	case "educational":
		return "Write as a clear, structured lesson with one host guiding and the other reinforcing key points."
	case "storytelling", "narrative":
		return "Write as a narrative told collaboratively by both hosts, building tension and payoff."
	default:
		return "Write as a narrative told collaboratively by both hosts, building tension and payoff."
	}
}

func systemPrompt(brief domain.Brief) string {
	return fmt.Sprintf(`You are a podcast dialogue writer for two hosts, host1 and host2.
%s
Mood: %s. Prefix each line with "host1:" or "host2:".`, styleDirective(brief.Style), brief.Mood)
}

func userPrompt(section domain.OutlineSection, brief domain.Brief, targetWords int, feedback string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Chapter %d. Purpose: %s\n", section.ChapterNumber, section.Purpose))
	sb.WriteString("Discussion points:\n")
	for _, p := range section.DiscussionPoints {
		sb.WriteString("- " + p + "\n")
	}
	sb.WriteString(fmt.Sprintf("Target length: %d words.\n", targetWords))
	if feedback != "" {
		sb.WriteString("Feedback: " + feedback + "\n")
	}
	return sb.String()
}
