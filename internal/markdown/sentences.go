package markdown

import "strings"

// Abbreviations is the set of period-bearing tokens the sentence splitter
// must not mistake for a sentence boundary (spec.md §3).
var Abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "vs": true, "etc": true, "i.e": true, "e.g": true,
}

// SplitSentences splits text into sentences on '.', '!', and '?', treating
// a terminator as non-breaking when the preceding word (stripped of
// trailing punctuation) is in Abbreviations. The unit of TTS is always a
// sentence, never a paragraph (spec.md §9).
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		current.WriteRune(ch)

		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}

		// Never break mid-abbreviation ("Dr." followed by a name).
		if ch == '.' && endsWithAbbreviation(current.String()) {
			continue
		}

		// Only a boundary if followed by whitespace/EOF (not e.g. "3.14").
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		if next != 0 && next != ' ' && next != '\n' && next != '\t' {
			continue
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

func endsWithAbbreviation(s string) bool {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], ".,;:"))
	return Abbreviations[last]
}
