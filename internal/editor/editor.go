// Package editor implements the Editor (C7): a final expand/condense
// convergence pass over the joined ToneScript, followed by lenient
// post-validation (spec.md §4.7).
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/markdown"
)

const stage = "editor"

// maxConvergenceAttempts mirrors the Scripter's (C5) loop budget, grounded
// on the same convergence contract (spec.md §4.5/§4.7).
const maxConvergenceAttempts = 3
const acceptDeviationPercent = 2.0

// warnDeviationPercent is the lenient post-validation ceiling: above this,
// the final script is accepted with a warning rather than rejected
// (spec.md §4.7).
const warnDeviationPercent = 15.0

const minScriptLength = 100

type Editor struct {
	Agent *agent.Agent
}

func New(a *agent.Agent) *Editor { return &Editor{Agent: a} }

// Edit runs C7: converge the joined tone script toward the total word
// budget, then validate structural sanity and report (non-fatal) warnings.
func (e *Editor) Edit(ctx context.Context, tone domain.ToneScript, budget domain.WordBudget) (domain.FinalScript, []string, error) {
	markdownText := tone.Markdown
	spoken := markdown.SpokenWordCountForScript(markdownText)
	deviation := markdown.DeviationPercent(budget.TotalWords, spoken)

	feedback := ""
	for attempt := 1; attempt <= maxConvergenceAttempts && deviation > acceptDeviationPercent; attempt++ {
		feedback = correctiveFeedback(budget.TotalWords, spoken)
		raw, err := e.Agent.Execute(ctx, systemPrompt(), userPrompt(markdownText, budget.TotalWords, feedback))
		if err != nil {
			return domain.FinalScript{}, nil, err
		}
		markdownText = raw
		spoken = markdown.SpokenWordCountForScript(markdownText)
		deviation = markdown.DeviationPercent(budget.TotalWords, spoken)
	}

	final := domain.FinalScript{
		Markdown:         markdownText,
		SpokenWordCount:  spoken,
		DeviationPercent: deviation,
		ToneTagCount:     countToneTags(markdownText),
	}

	warnings, err := validate(final)
	if err != nil {
		return domain.FinalScript{}, warnings, err
	}
	return final, warnings, nil
}

// validate performs structural sanity checks (spec.md §4.7): a final script
// under minScriptLength characters or containing placeholder markers is a
// hard failure. Deviation beyond warnDeviationPercent and a zero tone-tag
// count are reported as warnings, never failures.
func validate(final domain.FinalScript) ([]string, error) {
	if len(strings.TrimSpace(final.Markdown)) < minScriptLength {
		return nil, domain.NewStageError(domain.ErrorKindAgent, stage, fmt.Errorf("final script is implausibly short (%d chars)", len(final.Markdown)))
	}
	if strings.Contains(final.Markdown, "TODO") || strings.Contains(final.Markdown, "[INSERT") {
		return nil, domain.NewStageError(domain.ErrorKindAgent, stage, fmt.Errorf("final script contains unresolved placeholder markers"))
	}

	var warnings []string
	if final.DeviationPercent > warnDeviationPercent {
		warnings = append(warnings, fmt.Sprintf("final word count deviates %.1f%% from target", final.DeviationPercent))
	}
	if final.ToneTagCount == 0 {
		warnings = append(warnings, "final script contains no tone tags")
	}
	return warnings, nil
}

func countToneTags(md string) int {
	count := 0
	for tag := range domain.ToneSet {
		count += strings.Count(strings.ToLower(md), "["+tag+"]")
	}
	for tag := range domain.ToneSynonyms {
		count += strings.Count(strings.ToLower(md), "["+tag+"]")
	}
	return count
}

func correctiveFeedback(target, actual int) string {
	if actual < target {
		return fmt.Sprintf("The script runs %d words short of the %d word target. Expand without changing structure or tone tags.", target-actual, target)
	}
	return fmt.Sprintf("The script runs %d words over the %d word target. Condense without dropping chapters or tone tags.", actual-target, target)
}

func systemPrompt() string {
	return `You are a meticulous podcast script editor. Adjust the script's length
toward the target word count while preserving structure, speaker labels,
and tone tags exactly.`
}

func userPrompt(md string, target int, feedback string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target words: %d\n", target))
	sb.WriteString("Feedback: " + feedback + "\n\n")
	sb.WriteString(md)
	return sb.String()
}
