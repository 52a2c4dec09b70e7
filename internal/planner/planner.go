// Package planner implements the Planner (C2): deriving a word budget,
// chapter skeleton, and tone plan from a Brief (spec.md §4.2).
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
)

const stage = "planner"

// requiredSections mirrors spec.md §4.2's lenient-validation list: at most
// 2 of these may be missing before the stage fails.
var requiredSections = []string{"Overview", "Chapter Breakdown", "Research Priorities", "Style Guidelines"}

var chapterHeadingRe = regexp.MustCompile(`(?m)^###\s*Chapter\s*(\d+)\s*[:：-]?\s*(.*)$`)
var keyPointRe = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
var wordEstimateRe = regexp.MustCompile(`(?i)duration[^\d]*(\d+)`)

type Planner struct {
	Agent *agent.Agent
}

func New(a *agent.Agent) *Planner { return &Planner{Agent: a} }

// Plan runs the Planner stage end to end: build the prompt, call the
// agent, parse the response, and apply the lenient-missing-sections gate.
func (p *Planner) Plan(ctx context.Context, brief domain.Brief, budget domain.WordBudget) (domain.Plan, error) {
	system := systemPrompt(brief, budget)
	user := userPrompt(brief, budget)

	raw, err := p.Agent.Execute(ctx, system, user)
	if err != nil {
		return domain.Plan{}, err
	}

	plan := Parse(raw)

	missing := missingSections(raw)
	if len(missing) > 2 {
		return domain.Plan{}, domain.NewStageError(domain.ErrorKindAgent, stage,
			fmt.Errorf("plan missing required sections: %v", missing))
	}

	return plan, nil
}

// Parse extracts a Plan record from Planner markdown (spec.md §3).
func Parse(md string) domain.Plan {
	plan := domain.Plan{Markdown: md}

	matches := chapterHeadingRe.FindAllStringSubmatchIndex(md, -1)
	for i, m := range matches {
		start := m[0]
		end := len(md)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := md[start:end]
		number, _ := strconv.Atoi(md[m[2]:m[3]])
		title := strings.TrimSpace(md[m[4]:m[5]])

		chapter := domain.PlanChapter{
			Number:        number,
			Title:         title,
			KeyPoints:     extractKeyPoints(body),
			Purpose:       extractField(body, "Narrative Purpose"),
			ResearchFocus: extractField(body, "Research Focus"),
		}
		if wm := wordEstimateRe.FindStringSubmatch(body); wm != nil {
			chapter.WordEstimate, _ = strconv.Atoi(wm[1])
		}
		plan.Chapters = append(plan.Chapters, chapter)
	}

	return plan
}

func extractKeyPoints(body string) []string {
	section := extractSectionBody(body, "Key Points")
	var points []string
	for _, m := range keyPointRe.FindAllStringSubmatch(section, -1) {
		points = append(points, strings.TrimSpace(m[1]))
	}
	return points
}

func extractField(body, label string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:\s*(.+)`)
	if m := re.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractSectionBody(body, label string) string {
	idx := strings.Index(strings.ToLower(body), strings.ToLower(label))
	if idx < 0 {
		return ""
	}
	return body[idx:]
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

func systemPrompt(brief domain.Brief, budget domain.WordBudget) string {
	return fmt.Sprintf(`You are an expert podcast planner. Produce a Plan in markdown with
sections: Overview, Target Audience, Narrative Structure, Chapter Breakdown,
Research Priorities, Style Guidelines, Success Metrics.

Emit exactly %d chapters under "### Chapter N: <title>" headings, each with
Duration, Key Points (bulleted), Narrative Purpose, and Research Focus.
Word counts per chapter must sum to approximately %d words total (%d per
chapter). Style: %s. Mood: %s.`,
		brief.Chapters, budget.TotalWords, budget.PerChapter, brief.Style, brief.Mood)
}

func userPrompt(brief domain.Brief, budget domain.WordBudget) string {
	focus := brief.Focus
	if focus == "" {
		focus = "(none specified)"
	}
	return fmt.Sprintf("Topic: %s\nFocus: %s\nChapters: %d\nDuration: %d minutes\nTarget words: %d",
		brief.Topic, focus, brief.Chapters, brief.DurationMin, budget.TotalWords)
}
