package tone

import "github.com/castlight-audio/podcastgen/internal/domain"

// Arc is an advisory (non-invariant) descriptor of the emotional shape of an
// episode: the dominant tone in each third of the utterance sequence
// (spec.md §4.6 "Arc analysis").
type Arc struct {
	Opening string
	Middle  string
	Closing string
}

// AnalyzeArc computes the dominant tone per third of utterances. Returns
// the zero Arc for an empty sequence.
func AnalyzeArc(utterances []domain.Utterance) Arc {
	n := len(utterances)
	if n == 0 {
		return Arc{}
	}
	third := (n + 2) / 3
	if third == 0 {
		third = 1
	}

	end1 := min(third, n)
	end2 := min(2*third, n)

	return Arc{
		Opening: dominantTone(utterances[:end1]),
		Middle:  dominantTone(utterances[end1:end2]),
		Closing: dominantTone(utterances[end2:]),
	}
}

func dominantTone(utterances []domain.Utterance) string {
	counts := make(map[string]int)
	for _, u := range utterances {
		counts[u.Tone]++
	}
	best, bestCount := "", -1
	for tone, count := range counts {
		if count > bestCount {
			best, bestCount = tone, count
		}
	}
	return best
}
