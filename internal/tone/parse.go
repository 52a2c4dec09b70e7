// Package tone implements the Tone Annotator (C6): turning chapter scripts
// into a single tone-tagged script and parsing that script into sentence-
// level utterances via a tolerant, multi-strategy parser (spec.md §4.6/§9).
package tone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/markdown"
)

var (
	strictLineRe  = regexp.MustCompile(`(?i)^\*{0,2}Host\s*([12])\*{0,2}:\*{0,2}\s*\[([a-zA-Z]+)\]\s*(.+)$`)
	legacyLineRe  = regexp.MustCompile(`(?i)^\*{2}\[([a-zA-Z]+)\]\*{2}\s*(.+)$`)
	hostOnlyRe    = regexp.MustCompile(`(?i)^\*{0,2}Host\s*([12])\*{0,2}:\*{0,2}\s*(.+)$`)
	chapterHeadRe = regexp.MustCompile(`(?i)^#{1,3}\s*Chapter\s*(\d+)\b`)
)

// Parse converts a ToneScript's markdown body into an ordered Utterance
// sequence, trying each strategy from spec.md §4.6 in order. No strategy
// ever silently drops a line of dialogue (spec.md §9). "## Chapter N"
// headings (carried through from the Tone Annotator's per-chapter join,
// spec.md §4.6) tag subsequent utterances so C9 can group audio by chapter;
// content before any heading is chapter 0 (e.g. an opening with no heading).
func Parse(md string) []domain.Utterance {
	lines := strings.Split(md, "\n")

	var blocks []block
	lastSpeaker := domain.SpeakerHost1
	chapter := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := chapterHeadRe.FindStringSubmatch(line); m != nil {
			fmt.Sscanf(m[1], "%d", &chapter)
			continue
		}

		if m := strictLineRe.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, block{speaker: speakerFromNumber(m[1]), tone: strings.ToLower(m[2]), text: m[3], chapter: chapter})
			lastSpeaker = speakerFromNumber(m[1])
			continue
		}

		if m := legacyLineRe.FindStringSubmatch(line); m != nil {
			// Legacy format carries no speaker label; speakers alternate
			// (spec.md §4.6 strategy b / §6 invariant).
			lastSpeaker = alternate(lastSpeaker)
			blocks = append(blocks, block{speaker: lastSpeaker, tone: strings.ToLower(m[1]), text: m[2], chapter: chapter})
			continue
		}

		if m := hostOnlyRe.FindStringSubmatch(line); m != nil {
			speaker := speakerFromNumber(m[1])
			blocks = append(blocks, block{speaker: speaker, tone: inferTone(m[2]), text: m[2], chapter: chapter})
			lastSpeaker = speaker
			continue
		}
		// A bare dialogue line with no recognizable speaker marker at all
		// is not host content (e.g. chapter heading prose); skip it rather
		// than inventing a speaker.
	}

	var utterances []domain.Utterance
	index := 0
	for _, b := range blocks {
		for _, sentence := range markdown.SplitSentences(b.text) {
			wc := len(strings.Fields(markdown.SpokenText(sentence)))
			utterances = append(utterances, domain.Utterance{
				Index:            index,
				ChapterNumber:    b.chapter,
				Speaker:          b.speaker,
				Tone:             b.tone,
				Text:             sentence,
				WordCount:        wc,
				EstimatedSeconds: float64(wc) / 2.5,
			})
			index++
		}
	}

	return utterances
}

type block struct {
	speaker domain.Speaker
	tone    string
	text    string
	chapter int
}

func speakerFromNumber(n string) domain.Speaker {
	if n == "2" {
		return domain.SpeakerHost2
	}
	return domain.SpeakerHost1
}

func alternate(s domain.Speaker) domain.Speaker {
	if s == domain.SpeakerHost1 {
		return domain.SpeakerHost2
	}
	return domain.SpeakerHost1
}

// inferTone implements strategy (c) of spec.md §4.6: content-keyword
// inference when no explicit tone tag is present at all.
func inferTone(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "!"):
		return "excited"
	case strings.Contains(text, "?") || containsAny(lower, "curious", "wonder", "i wonder"):
		return "curious"
	case containsAny(lower, "however", "consider", "reflect"):
		return "reflective"
	case containsAny(lower, "doubt", "really", "sure"):
		return "skeptical"
	case containsAny(lower, "serious", "critical", "important"):
		return "serious"
	default:
		return "calm"
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// ValidateUtterance checks the invariant that every utterance carries a
// tone from the closed set (accepting historical synonyms, per spec.md §9)
// and a recognized speaker.
func ValidateUtterance(u domain.Utterance) error {
	if u.Speaker != domain.SpeakerHost1 && u.Speaker != domain.SpeakerHost2 {
		return fmt.Errorf("utterance %d: unrecognized speaker %q", u.Index, u.Speaker)
	}
	if !domain.ToneSet[u.Tone] && !domain.ToneSynonyms[u.Tone] {
		return fmt.Errorf("utterance %d: tone %q outside closed set and synonyms", u.Index, u.Tone)
	}
	return nil
}
