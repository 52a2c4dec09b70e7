// Package agent implements the Agent Runtime (C1): a uniform execute
// contract over two swappable model backends, with automatic fallback and
// retry-with-backoff (spec.md §4.1).
package agent

import (
	"context"
	"fmt"

	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/internal/domain"
)

const maxAttempts = 3

// Agent wraps one pipeline role's backend pair and system prompt knobs.
type Agent struct {
	Stage        string
	ThreadClient llm.ThreadClient // backend A, may be nil
	ChatClient   llm.ChatClient   // backend B, required
	Temperature  *float64
}

// New builds an Agent for a stage. threadClient may be nil if the role has
// no remote agent id configured; Execute then always uses chatClient.
func New(stage string, threadClient llm.ThreadClient, chatClient llm.ChatClient, temperature *float64) *Agent {
	return &Agent{Stage: stage, ThreadClient: threadClient, ChatClient: chatClient, Temperature: temperature}
}

// Execute runs the backend-selection + retry logic of spec.md §4.1:
//  1. If a remote agent id is configured and available, call backend A.
//     A failed run is a soft failure that falls through to backend B.
//  2. Otherwise (or on fallthrough) call backend B (generic chat).
//
// Each backend call is retried up to 3 times with exponential backoff +
// jitter; non-retryable errors abort immediately. Exhausted retries surface
// as a *domain.StageError of kind "agent".
func (a *Agent) Execute(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if a.ThreadClient != nil && a.ThreadClient.Available() {
		resp, err := a.runThread(ctx, systemPrompt, userPrompt)
		if err == nil {
			return resp.Content, nil
		}
		// Soft failure: fall through to backend B rather than fail the stage.
	}

	resp, err := a.runChat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", domain.NewStageError(domain.ErrorKindAgent, a.Stage, err)
	}
	return resp.Content, nil
}

func (a *Agent) runThread(ctx context.Context, systemPrompt, userPrompt string) (*llm.ChatResponse, error) {
	var resp *llm.ChatResponse
	err := llm.WithRetry(ctx, maxAttempts, a.Stage, func(attempt int) error {
		var innerErr error
		resp, innerErr = a.ThreadClient.RunAndWait(ctx, systemPrompt, userPrompt)
		return innerErr
	})
	return resp, err
}

func (a *Agent) runChat(ctx context.Context, systemPrompt, userPrompt string) (*llm.ChatResponse, error) {
	if a.ChatClient == nil {
		return nil, fmt.Errorf("no chat backend configured for stage %s", a.Stage)
	}
	var resp *llm.ChatResponse
	err := llm.WithRetry(ctx, maxAttempts, a.Stage, func(attempt int) error {
		var innerErr error
		resp, innerErr = a.ChatClient.Chat(ctx, systemPrompt, userPrompt, a.Temperature)
		return innerErr
	})
	return resp, err
}
