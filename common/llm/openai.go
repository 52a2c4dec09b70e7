package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// threadClient implements ThreadClient (backend A) against OpenAI's
// Assistants/Threads API: create thread -> add user message -> run and
// poll -> read the assistant's reply. This is the "specialized remote
// agent service" collaborator from spec.md §6; the agent id is the
// Assistant id configured per pipeline role (agents.{role}Id).
type threadClient struct {
	openai    openai.Client
	model     string
	agentID   string
}

// NewThreadClient builds a backend-A client for one pipeline role. If
// agentID is empty the client reports Available()==false and the agent
// runtime falls through to the generic chat backend, per spec.md §4.1.
func NewThreadClient(cfg Config, agentID string) (ThreadClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &threadClient{
		openai:  openai.NewClient(opts...),
		model:   model,
		agentID: agentID,
	}, nil
}

func (c *threadClient) Available() bool {
	return c.agentID != ""
}

func (c *threadClient) Model() string { return c.model }

func (c *threadClient) RunAndWait(ctx context.Context, systemPrompt, userPrompt string) (*ChatResponse, error) {
	if !c.Available() {
		return nil, &ErrNonRetryable{Err: fmt.Errorf("no remote agent id configured")}
	}

	start := time.Now()

	thread, err := c.openai.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}

	if _, err := c.openai.Beta.Threads.Messages.New(ctx, thread.ID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(userPrompt),
		},
	}); err != nil {
		return nil, fmt.Errorf("append thread message: %w", err)
	}

	run, err := c.openai.Beta.Threads.Runs.NewAndPoll(ctx, thread.ID, openai.BetaThreadRunNewParams{
		AssistantID:  c.agentID,
		Instructions: openai.String(systemPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("run thread: %w", err)
	}

	if run.Status == "failed" {
		// Soft failure per spec.md §4.1: the caller falls through to backend B.
		slog.WarnContext(ctx, "remote agent run failed", "thread_id", thread.ID, "agent_id", c.agentID)
		return nil, &ErrNonRetryable{Err: fmt.Errorf("remote agent run failed: %s", run.LastError.Message)}
	}

	messages, err := c.openai.Beta.Threads.Messages.List(ctx, thread.ID, openai.BetaThreadMessageListParams{
		Limit: openai.Int(1),
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("list thread messages: %w", err)
	}
	if len(messages.Data) == 0 {
		return nil, fmt.Errorf("no assistant reply on thread %s", thread.ID)
	}

	var sb strings.Builder
	for _, block := range messages.Data[0].Content {
		if block.Type == "text" {
			sb.WriteString(block.Text.Value)
		}
	}

	slog.DebugContext(ctx, "remote agent run completed",
		"model", c.model, "agent_id", c.agentID, "duration_ms", time.Since(start).Milliseconds())

	return &ChatResponse{
		Content:          strings.TrimSpace(sb.String()),
		PromptTokens:     int(run.Usage.PromptTokens),
		CompletionTokens: int(run.Usage.CompletionTokens),
		FinishReason:     string(run.Status),
	}, nil
}

// chatClient implements ChatClient against OpenAI's plain chat-completion
// endpoint. cmd/server uses it as backend B for every role when no
// Anthropic API key is configured.
type chatClient struct {
	openai openai.Client
	model  string
}

func NewOpenAIChatClient(cfg Config) (ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &chatClient{openai: openai.NewClient(opts...), model: model}, nil
}

func (c *chatClient) Model() string { return c.model }

func (c *chatClient) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature *float64) (*ChatResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens: openai.Int(4096),
	}
	if temperature != nil {
		params.Temperature = openai.Float(*temperature)
	}

	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", c.model, "duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)

	return &ChatResponse{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		FinishReason:     string(resp.Choices[0].FinishReason),
	}, nil
}
