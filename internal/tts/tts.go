// Package tts implements the Speech Synthesizer (C8): one synthesis call
// per Utterance, written atomically to a per-job scratch directory, voice
// selected by speaker (spec.md §4.8).
package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/castlight-audio/podcastgen/common/id"
	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/domain"
)

const stage = "tts"

type Voices struct {
	Host1 string
	Host2 string
}

type Config struct {
	Model  string
	Speed  float64
	Format string
	Voices Voices
}

type Synthesizer struct {
	Backend llm.Synthesizer
	Config  Config
}

func New(backend llm.Synthesizer, cfg Config) *Synthesizer {
	return &Synthesizer{Backend: backend, Config: cfg}
}

// SynthesizeAll renders every utterance to its own audio file under
// scratchDir, in chapter order. A single utterance failure is fatal to the
// job (spec.md §4.8: "no silent skip") — partial output is left for the
// orchestrator to clean up on failure.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, scratchDir string, utterances []domain.Utterance) ([]string, error) {
	paths := make([]string, len(utterances))

	for i, u := range utterances {
		voice := s.voiceFor(u.Speaker)
		audio, err := s.Backend.Speak(ctx, llm.SpeechRequest{
			Model:  s.Config.Model,
			Voice:  voice,
			Input:  u.Text,
			Speed:  s.Config.Speed,
			Format: s.Config.Format,
		})
		if err != nil {
			return nil, domain.NewStageError(domain.ErrorKindAudio, stage,
				fmt.Errorf("synthesize utterance %d: %w", u.Index, err))
		}

		path := filepath.Join(scratchDir, fmt.Sprintf("chapter-%d-utterance-%d-%d.%s", u.ChapterNumber, u.Index, id.New(), s.format()))
		tmpPath := path + ".tmp"
		if err := os.WriteFile(tmpPath, audio, 0o644); err != nil {
			return nil, domain.NewStageError(domain.ErrorKindAudio, stage,
				fmt.Errorf("write utterance %d audio: %w", u.Index, err))
		}
		if err := os.Rename(tmpPath, path); err != nil {
			os.Remove(tmpPath)
			return nil, domain.NewStageError(domain.ErrorKindAudio, stage,
				fmt.Errorf("rename utterance %d audio: %w", u.Index, err))
		}
		paths[i] = path
	}

	return paths, nil
}

func (s *Synthesizer) voiceFor(speaker domain.Speaker) string {
	if speaker == domain.SpeakerHost2 {
		return s.Config.Voices.Host2
	}
	return s.Config.Voices.Host1
}

func (s *Synthesizer) format() string {
	if s.Config.Format == "" {
		return "mp3"
	}
	return s.Config.Format
}
