package tone

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/domain"
)

const stage = "tone_annotator"

// Annotator is the Tone Annotator (C6): it joins the Scripter's per-chapter
// scripts in chapter order, asks the model to annotate every line with a
// tone tag, then parses the result into utterances (spec.md §4.6).
type Annotator struct {
	Agent *agent.Agent
}

func New(a *agent.Agent) *Annotator { return &Annotator{Agent: a} }

func (a *Annotator) Annotate(ctx context.Context, scripts []domain.ChapterScript, brief domain.Brief) (domain.ToneScript, error) {
	joined := joinChapters(scripts)

	raw, err := a.Agent.Execute(ctx, systemPrompt(brief), userPrompt(joined))
	if err != nil {
		return domain.ToneScript{}, err
	}

	utterances := Parse(raw)
	if len(utterances) == 0 {
		return domain.ToneScript{}, domain.NewStageError(domain.ErrorKindAgent, stage,
			fmt.Errorf("tone annotator produced no parseable utterances"))
	}
	for _, u := range utterances {
		if err := ValidateUtterance(u); err != nil {
			return domain.ToneScript{}, domain.NewStageError(domain.ErrorKindAgent, stage, err)
		}
	}

	return domain.ToneScript{Markdown: raw, Utterances: utterances}, nil
}

// joinChapters orders scripts by ChapterNumber regardless of the order
// produced by the Scripter's (C5) concurrent fan-out (spec.md §4.5 invariant
// "chapter order preserved regardless of completion order").
func joinChapters(scripts []domain.ChapterScript) string {
	ordered := make([]domain.ChapterScript, len(scripts))
	copy(ordered, scripts)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ChapterNumber < ordered[j].ChapterNumber })

	var sb strings.Builder
	for _, s := range ordered {
		sb.WriteString(fmt.Sprintf("## Chapter %d\n", s.ChapterNumber))
		sb.WriteString(s.Markdown)
		sb.WriteString("\n")
	}
	return sb.String()
}

func systemPrompt(brief domain.Brief) string {
	return fmt.Sprintf(`You annotate podcast dialogue with a tone tag per line. Rewrite every
line as "Host N: [tone] text", choosing tone from: upbeat, calm, excited,
reflective, suspenseful, skeptical, humorous, serious, curious, confident.
Preserve every line of dialogue and its speaker and order exactly. Keep
every "## Chapter N" heading exactly as given, on its own line, so chapter
boundaries survive annotation. Overall mood: %s.`, brief.Mood)
}

func userPrompt(joined string) string {
	return joined
}
