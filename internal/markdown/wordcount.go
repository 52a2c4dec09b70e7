// Package markdown implements the word-counting, sentence-splitting, and
// markdown-as-IPC parsing utilities every agent and stage shares (spec.md
// §3 "Word counting", §4.1, §9 "Markdown-as-IPC").
package markdown

import (
	"regexp"
	"strings"
)

var (
	headerRe      = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	emphasisRe    = regexp.MustCompile(`\*{1,3}|_{1,3}`)
	listMarkerRe  = regexp.MustCompile(`(?m)^\s*[-*+]\s+|^\s*\d+\.\s+`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	bracketRe     = regexp.MustCompile(`\[[^\]]*\]`)
	hostLabelRe   = regexp.MustCompile(`(?i)^\*{0,2}Host\s*[12]\*{0,2}:\s*`)
	punctuationRe = regexp.MustCompile(`[^\w\s']`)
)

// RawWordCount counts whitespace-separated tokens after stripping markdown
// emphasis, headers, list markers, and link syntax (spec.md §3). It is used
// for planning/outline artifacts, never as the authoritative budget measure.
func RawWordCount(text string) int {
	s := headerRe.ReplaceAllString(text, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	return len(strings.Fields(s))
}

// SpokenWordCount counts only the words that will actually be read aloud
// from a dialogue line: text after "**Host N:** [tone]?", with all
// bracketed content removed and punctuation dropped before the whitespace
// split (spec.md §3). This is the authoritative measure for budget
// conformance.
func SpokenWordCount(line string) int {
	return len(strings.Fields(SpokenText(line)))
}

// SpokenText extracts the speakable text from one dialogue line: the host
// label and any bracketed tone tag are stripped, then punctuation is
// dropped.
func SpokenText(line string) string {
	s := hostLabelRe.ReplaceAllString(strings.TrimSpace(line), "")
	s = bracketRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	s = punctuationRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SpokenWordCountForScript sums SpokenWordCount over every dialogue line in
// a full ChapterScript/ToneScript/FinalScript markdown body.
func SpokenWordCountForScript(md string) int {
	total := 0
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if hostLabelRe.MatchString(trimmed) {
			total += SpokenWordCount(trimmed)
		}
	}
	return total
}

// DeviationPercent computes |actual-target|/target * 100, matching the
// tolerance checks used throughout C5/C7 (spec.md §4.5/§4.7).
func DeviationPercent(target, actual int) float64 {
	if target == 0 {
		return 0
	}
	d := float64(actual-target) / float64(target) * 100
	if d < 0 {
		d = -d
	}
	return d
}
