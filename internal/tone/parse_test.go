package tone_test

import (
	"testing"

	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/tone"
)

func TestParseStrictFormat(t *testing.T) {
	md := "**Host 1:** [excited] This is amazing! **Host 2:** [calm] I agree completely."
	got := tone.Parse(md)

	if len(got) < 2 {
		t.Fatalf("expected at least 2 utterances, got %d", len(got))
	}
	if got[0].Speaker != domain.SpeakerHost1 || got[0].Tone != "excited" {
		t.Errorf("first utterance = %+v, want speaker=host1 tone=excited", got[0])
	}
}

func TestParseLegacyFormatAlternatesSpeakers(t *testing.T) {
	md := "**[excited]** This is the opening line.\n**[calm]** And this is the reply."
	got := tone.Parse(md)

	if len(got) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(got))
	}
	if got[0].Speaker == got[1].Speaker {
		t.Errorf("legacy format should alternate speakers, got %s twice", got[0].Speaker)
	}
	if got[0].Tone != "excited" || got[1].Tone != "calm" {
		t.Errorf("tones = %s, %s; want excited, calm", got[0].Tone, got[1].Tone)
	}
}

func TestParseInfersToneWhenUntagged(t *testing.T) {
	md := "**Host 1:** This is absolutely wonderful!"
	got := tone.Parse(md)

	if len(got) != 1 {
		t.Fatalf("expected 1 utterance, got %d", len(got))
	}
	if got[0].Tone != "excited" {
		t.Errorf("inferred tone = %s, want excited", got[0].Tone)
	}
}

func TestParseSplitsParagraphIntoSentences(t *testing.T) {
	md := "**Host 1:** [calm] First sentence here. Second sentence follows."
	got := tone.Parse(md)

	if len(got) != 2 {
		t.Fatalf("expected 2 utterances from one dialogue line, got %d", len(got))
	}
	for _, u := range got {
		if u.Speaker != domain.SpeakerHost1 || u.Tone != "calm" {
			t.Errorf("utterance %+v should share speaker/tone across split sentences", u)
		}
	}
}

func TestValidateUtteranceAcceptsSynonyms(t *testing.T) {
	u := domain.Utterance{Speaker: domain.SpeakerHost1, Tone: "hopeful"}
	if err := tone.ValidateUtterance(u); err != nil {
		t.Errorf("expected synonym tone to validate, got %v", err)
	}
}

func TestValidateUtteranceRejectsUnknownTone(t *testing.T) {
	u := domain.Utterance{Speaker: domain.SpeakerHost1, Tone: "bogus"}
	if err := tone.ValidateUtterance(u); err == nil {
		t.Error("expected error for unknown tone")
	}
}

func TestParseTagsUtterancesWithChapterHeading(t *testing.T) {
	md := "## Chapter 1\nHost1: [calm] First chapter line.\n## Chapter 2\nHost2: [excited] Second chapter line!"
	got := tone.Parse(md)

	if len(got) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(got))
	}
	if got[0].ChapterNumber != 1 {
		t.Errorf("first utterance chapter = %d, want 1", got[0].ChapterNumber)
	}
	if got[1].ChapterNumber != 2 {
		t.Errorf("second utterance chapter = %d, want 2", got[1].ChapterNumber)
	}
}
