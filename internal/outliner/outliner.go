// Package outliner implements the Outliner (C4): turning a Plan + research
// notes into a section-by-section Outline with opening/chapter/closing
// discussion points (spec.md §4.4).
package outliner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
)

const stage = "outliner"

var requiredSections = []string{"Opening", "Closing"}

var sectionHeadingRe = regexp.MustCompile(`(?m)^##\s*(Opening|Chapter\s*(\d+)|Closing)\s*[:：-]?\s*(.*)$`)
var pointRe = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)

type Outliner struct {
	Agent *agent.Agent
}

func New(a *agent.Agent) *Outliner { return &Outliner{Agent: a} }

// Outline runs C4: build the prompt from the plan and research notes, call
// the agent, parse sections, and classify balance by comparing the number of
// parsed chapter sections with the plan's chapter count. No per-section word
// estimate is computed.
func (o *Outliner) Outline(ctx context.Context, plan domain.Plan, notes domain.ResearchNotes, budget domain.WordBudget) (domain.Outline, error) {
	raw, err := o.Agent.Execute(ctx, systemPrompt(plan), userPrompt(plan, notes, budget))
	if err != nil {
		return domain.Outline{}, err
	}

	missing := missingSections(raw)
	if len(missing) > 1 {
		return domain.Outline{}, domain.NewStageError(domain.ErrorKindAgent, stage,
			fmt.Errorf("outline missing required sections: %v", missing))
	}

	outline := Parse(raw, len(plan.Chapters))
	outline.Balance = classifyBalance(outline, len(plan.Chapters))
	return outline, nil
}

// Parse extracts OutlineSections from markdown. expectedChapters tolerates a
// ±1 count mismatch (spec.md §4.4 edge case) without failing the stage;
// balance classification below reflects any shortfall.
func Parse(md string, expectedChapters int) domain.Outline {
	outline := domain.Outline{Markdown: md}

	matches := sectionHeadingRe.FindAllStringSubmatchIndex(md, -1)
	for i, m := range matches {
		start := m[0]
		end := len(md)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := md[start:end]
		label := md[m[2]:m[3]]

		section := domain.OutlineSection{DiscussionPoints: extractPoints(body)}
		switch {
		case strings.EqualFold(label, "Opening"):
			section.Kind = domain.OutlineSectionOpening
		case strings.EqualFold(label, "Closing"):
			section.Kind = domain.OutlineSectionClosing
		default:
			section.Kind = domain.OutlineSectionChapter
			if m[4] != -1 {
				fmt.Sscanf(md[m[4]:m[5]], "%d", &section.ChapterNumber)
			}
		}
		if m[6] != -1 {
			section.Purpose = strings.TrimSpace(md[m[6]:m[7]])
		}
		outline.Sections = append(outline.Sections, section)
	}

	return outline
}

func extractPoints(body string) []string {
	var points []string
	for _, m := range pointRe.FindAllStringSubmatch(body, -1) {
		points = append(points, strings.TrimSpace(m[1]))
	}
	return points
}

// classifyBalance buckets how close the parsed chapter-section count landed
// to the planned chapter count, reusing the shared accuracy scale
// (spec.md §4.4: "balance" reported the same way as word-count accuracy).
func classifyBalance(outline domain.Outline, expectedChapters int) domain.AccuracyBucket {
	actual := 0
	for _, s := range outline.Sections {
		if s.Kind == domain.OutlineSectionChapter {
			actual++
		}
	}
	return domain.ClassifyAccuracy(expectedChapters, actual)
}

func missingSections(md string) []string {
	var missing []string
	lower := strings.ToLower(md)
	for _, section := range requiredSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			missing = append(missing, section)
		}
	}
	return missing
}

func systemPrompt(plan domain.Plan) string {
	return `You are an expert podcast outliner. Produce an Outline in markdown with
"## Opening", one "## Chapter N" section per chapter matching the plan, and
"## Closing". Each section must list discussion points as bullets and end
with a one-line Purpose.`
}

func userPrompt(plan domain.Plan, notes domain.ResearchNotes, budget domain.WordBudget) string {
	var sb strings.Builder
	sb.WriteString("Plan:\n")
	sb.WriteString(plan.Markdown)
	sb.WriteString("\n\nResearch Notes:\n")
	sb.WriteString(notes.Markdown)
	sb.WriteString(fmt.Sprintf("\n\nTarget words per chapter: %d\n", budget.PerChapter))
	return sb.String()
}
