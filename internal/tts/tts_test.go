package tts_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/castlight-audio/podcastgen/common/id"
	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/tts"
)

func init() {
	_ = id.Init(1)
}

type fakeBackend struct {
	voicesUsed []string
	failAt     int
	calls      int
}

func (f *fakeBackend) Speak(ctx context.Context, req llm.SpeechRequest) ([]byte, error) {
	defer func() { f.calls++ }()
	f.voicesUsed = append(f.voicesUsed, req.Voice)
	if f.calls == f.failAt {
		return nil, errors.New("synthesis backend error")
	}
	return []byte("fake-audio-bytes"), nil
}

func TestSynthesizeAllUsesVoiceBySpeaker(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{failAt: -1}
	s := tts.New(backend, tts.Config{
		Model: "tts-1", Format: "mp3",
		Voices: tts.Voices{Host1: "alloy", Host2: "echo"},
	})

	utterances := []domain.Utterance{
		{Index: 0, Speaker: domain.SpeakerHost1, Text: "hello"},
		{Index: 1, Speaker: domain.SpeakerHost2, Text: "hi there"},
	}

	paths, err := s.SynthesizeAll(context.Background(), dir, utterances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if backend.voicesUsed[0] != "alloy" || backend.voicesUsed[1] != "echo" {
		t.Errorf("voices used = %v, want [alloy echo]", backend.voicesUsed)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected file to exist at %s: %v", p, err)
		}
	}
}

func TestSynthesizeAllFailsFastOnUtteranceError(t *testing.T) {
	dir := t.TempDir()
	backend := &fakeBackend{failAt: 1}
	s := tts.New(backend, tts.Config{Model: "tts-1", Voices: tts.Voices{Host1: "alloy", Host2: "echo"}})

	utterances := []domain.Utterance{
		{Index: 0, Speaker: domain.SpeakerHost1, Text: "ok"},
		{Index: 1, Speaker: domain.SpeakerHost2, Text: "boom"},
	}

	_, err := s.SynthesizeAll(context.Background(), dir, utterances)
	if err == nil {
		t.Fatal("expected error on utterance synthesis failure")
	}
	if domain.KindOf(err) != domain.ErrorKindAudio {
		t.Errorf("expected ErrorKindAudio, got %v", domain.KindOf(err))
	}
}
