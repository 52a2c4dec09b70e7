package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Synthesizer is the text-to-speech collaborator (backend B / TTS, §6):
// operation speak({model, voice, input, speed, format}) -> byteStream.
type Synthesizer interface {
	Speak(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// SpeechRequest carries everything C8 needs for one utterance.
type SpeechRequest struct {
	Model  string
	Voice  string
	Input  string
	Speed  float64
	Format string
}

type openaiSynthesizer struct {
	openai openai.Client
}

func NewOpenAISynthesizer(cfg Config) (Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openaiSynthesizer{openai: openai.NewClient(opts...)}, nil
}

func (s *openaiSynthesizer) Speak(ctx context.Context, req SpeechRequest) ([]byte, error) {
	format := req.Format
	if format == "" {
		format = "mp3"
	}
	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	resp, err := s.openai.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(req.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(req.Voice),
		Input:          req.Input,
		Speed:          openai.Float(speed),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat(format),
	})
	if err != nil {
		return nil, fmt.Errorf("tts speak: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	return data, nil
}
