package tone_test

import (
	"testing"

	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/tone"
)

func TestAnalyzeArcSplitsIntoThirds(t *testing.T) {
	utterances := []domain.Utterance{
		{Tone: "curious"}, {Tone: "curious"},
		{Tone: "excited"}, {Tone: "excited"},
		{Tone: "reflective"}, {Tone: "reflective"},
	}

	arc := tone.AnalyzeArc(utterances)

	if arc.Opening != "curious" {
		t.Errorf("opening = %s, want curious", arc.Opening)
	}
	if arc.Middle != "excited" {
		t.Errorf("middle = %s, want excited", arc.Middle)
	}
	if arc.Closing != "reflective" {
		t.Errorf("closing = %s, want reflective", arc.Closing)
	}
}

func TestAnalyzeArcEmptyReturnsZeroValue(t *testing.T) {
	arc := tone.AnalyzeArc(nil)
	if arc != (tone.Arc{}) {
		t.Errorf("expected zero Arc for empty input, got %+v", arc)
	}
}
