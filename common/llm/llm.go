// Package llm wraps the two model backends the agent runtime chooses
// between: a specialized remote "thread" agent service (backend A) and a
// generic chat-completion service (backend B), plus text-to-speech.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// Config holds credentials/model selection for one backend client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ChatClient is the generic chat-completion collaborator (backend B, §6).
// Agents exchange plain markdown, not tool calls or JSON-schema payloads —
// the pipeline hands off work via tolerant markdown parsing (SPEC_FULL §10),
// so the contract here is intentionally just system+user prompt in, text out.
type ChatClient interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string, temperature *float64) (*ChatResponse, error)
	Model() string
}

// ThreadClient is the specialized remote agent collaborator (backend A, §6).
// It mirrors "create thread -> append message -> run and wait" rather than a
// single request/response call.
type ThreadClient interface {
	// Available reports whether the remote agent id this client was built
	// for is usable at all (e.g. configured with a non-empty agent id).
	Available() bool
	RunAndWait(ctx context.Context, systemPrompt, userPrompt string) (*ChatResponse, error)
	Model() string
}

// ChatResponse is the normalized result of a model call, independent of
// which backend produced it.
type ChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	FinishReason     string
}

// Temp is a helper for building an explicit (non-nil) temperature pointer.
func Temp(t float64) *float64 { return &t }

// ErrNonRetryable wraps a backend error to record that it must not be retried
// (HTTP-equivalent 400/401/403 per spec.md §4.1).
type ErrNonRetryable struct {
	Err error
}

func (e *ErrNonRetryable) Error() string { return e.Err.Error() }
func (e *ErrNonRetryable) Unwrap() error  { return e.Err }

// IsRetryable reports whether a failed call should be retried. Context
// cancellation/deadline and anything wrapped in ErrNonRetryable are not
// retryable; everything else (including network errors and 429/5xx) is.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var nonRetryable *ErrNonRetryable
	if errors.As(err, &nonRetryable) {
		return false
	}
	return true
}

// WithRetry runs fn up to maxAttempts times, sleeping
// 1s*2^(attempt-1) + random[0,1)s between attempts, per spec.md §4.1's
// exponential-backoff-plus-jitter formula. It stops early on a
// non-retryable error.
func WithRetry(ctx context.Context, maxAttempts int, stage string, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		if !IsRetryable(ctx, err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		backoff := time.Duration(1<<(attempt-1))*time.Second + time.Duration(rand.Int63n(int64(time.Second)))
		slog.WarnContext(ctx, "model call retry",
			"stage", stage, "attempt", attempt, "backoff_ms", backoff.Milliseconds(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
