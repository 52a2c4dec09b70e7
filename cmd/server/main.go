package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/castlight-audio/podcastgen/common/id"
	"github.com/castlight-audio/podcastgen/common/llm"
	"github.com/castlight-audio/podcastgen/common/logger"
	"github.com/castlight-audio/podcastgen/common/otel"
	"github.com/castlight-audio/podcastgen/core/config"
	"github.com/castlight-audio/podcastgen/internal/agent"
	"github.com/castlight-audio/podcastgen/internal/audio"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/editor"
	"github.com/castlight-audio/podcastgen/internal/orchestrator"
	"github.com/castlight-audio/podcastgen/internal/outliner"
	"github.com/castlight-audio/podcastgen/internal/planner"
	"github.com/castlight-audio/podcastgen/internal/registry"
	"github.com/castlight-audio/podcastgen/internal/researcher"
	"github.com/castlight-audio/podcastgen/internal/scripter"
	"github.com/castlight-audio/podcastgen/internal/service"
	"github.com/castlight-audio/podcastgen/internal/tone"
	"github.com/castlight-audio/podcastgen/internal/tts"
)

// This entrypoint is a CLI driver, not an HTTP server (spec.md §1's
// scope covers the pipeline and Job-API, not a transport). It submits one
// job built from flags, polls it to a terminal state, and reports the
// result.
func main() {
	fmt.Printf("%s\n", banner)
	_ = godotenv.Load()
	ctx := context.Background()

	topic := flag.String("topic", "", "podcast topic (required)")
	focus := flag.String("focus", "", "optional focus/angle within the topic")
	mood := flag.String("mood", "neutral", "overall mood")
	style := flag.String("style", "conversational", "narrative style")
	chapters := flag.Int("chapters", 3, "number of chapters")
	duration := flag.Int("duration", 10, "target duration in minutes")
	source := flag.String("source", "", "optional source document path or URL to ground research on")
	flag.Parse()

	cfg := config.Load()

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "podcastgen starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		slog.ErrorContext(ctx, "failed to create output dir", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		slog.ErrorContext(ctx, "failed to create temp dir", "error", err)
		os.Exit(1)
	}
	if err := audio.CheckAvailable(); err != nil {
		slog.WarnContext(ctx, "ffmpeg/ffprobe not fully available, audio assembly will fail", "error", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build service", "error", err)
		os.Exit(1)
	}

	brief := domain.Brief{
		Topic:       *topic,
		Focus:       *focus,
		Mood:        *mood,
		Style:       *style,
		Chapters:    *chapters,
		DurationMin: *duration,
		Source:      *source,
	}

	job, err := svc.Submit(ctx, brief)
	if err != nil {
		slog.ErrorContext(ctx, "brief rejected", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "job submitted", "job_id", job.ID)

	final := awaitTerminal(ctx, svc, job.ID)

	switch final.State {
	case domain.JobStateCompleted:
		meta := domain.JobMetadata{}
		if final.Metadata != nil {
			meta = *final.Metadata
		}
		slog.InfoContext(ctx, "job completed",
			"job_id", final.ID, "audio_path", final.AudioPath, "words", meta.WordCount,
			"accuracy", meta.Accuracy, "duration_ms", meta.GenerationTimeMs)
	case domain.JobStateFailed:
		slog.ErrorContext(ctx, "job failed",
			"job_id", final.ID, "error_kind", final.ErrorKind, "error", final.ErrorMessage)
		os.Exit(1)
	case domain.JobStateCancelled:
		slog.WarnContext(ctx, "job cancelled", "job_id", final.ID)
	}

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}
}

// awaitTerminal polls Status until the job reaches a terminal state. The
// pipeline itself runs on its own goroutine inside Service.Submit; this is
// just a CLI-side wait, not part of the Job-API contract.
func awaitTerminal(ctx context.Context, svc *service.Service, jobID uuid.UUID) domain.Job {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		job, err := svc.Status(jobID)
		if err == nil && job.State.IsTerminal() {
			return job
		}
		select {
		case <-ctx.Done():
			return job
		case <-ticker.C:
		}
	}
}

// buildService wires every pipeline stage's Agent Runtime collaborators
// (backend A thread clients per role, a shared backend B chat client, and
// the TTS synthesizer) into the Orchestrator and Job-API facade.
func buildService(cfg config.Config) (*service.Service, error) {
	chatCfg := llm.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBase, Model: "gpt-4o"}

	var chatClient llm.ChatClient
	var err error
	if cfg.AnthropicKey != "" {
		chatClient, err = llm.NewAnthropicChatClient(llm.Config{APIKey: cfg.AnthropicKey, BaseURL: cfg.AnthropicBase, Model: "claude-sonnet-4-5"})
	} else {
		chatClient, err = llm.NewOpenAIChatClient(chatCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("building chat backend: %w", err)
	}

	thread := func(agentID string) llm.ThreadClient {
		tc, tcErr := llm.NewThreadClient(chatCfg, agentID)
		if tcErr != nil {
			return nil
		}
		return tc
	}

	plannerAgent := agent.New("planner", thread(cfg.Agents.PlannerID), chatClient, llm.Temp(0.7))
	researcherAgent := agent.New("researcher", thread(cfg.Agents.ResearcherID), chatClient, llm.Temp(0.3))
	outlinerAgent := agent.New("outliner", thread(cfg.Agents.OutlinerID), chatClient, llm.Temp(0.5))
	scripterAgent := agent.New("scripter", thread(cfg.Agents.ScripterID), chatClient, llm.Temp(0.8))
	toneAgent := agent.New("tone_annotator", thread(cfg.Agents.ToneAnnotatorID), chatClient, llm.Temp(0.4))
	editorAgent := agent.New("editor", thread(cfg.Agents.EditorID), chatClient, llm.Temp(0.2))

	synth, err := llm.NewOpenAISynthesizer(llm.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBase})
	if err != nil {
		return nil, fmt.Errorf("building tts backend: %w", err)
	}

	reg := registry.New()
	orch := &orchestrator.Orchestrator{
		Registry:   reg,
		Planner:    planner.New(plannerAgent),
		Researcher: researcher.New(researcherAgent, researcher.NewLocalFetcher()),
		Outliner:   outliner.New(outlinerAgent),
		Scripter:   scripter.New(scripterAgent),
		Tone:       tone.New(toneAgent),
		Editor:     editor.New(editorAgent),
		TTS: tts.New(synth, tts.Config{
			Model:  cfg.TTS.Model,
			Speed:  cfg.TTS.Speed,
			Format: cfg.TTS.Format,
			Voices: tts.Voices{Host1: cfg.TTS.VoiceHost1, Host2: cfg.TTS.VoiceHost2},
		}),
		Audio:     audio.New(cfg.JingleAsset),
		Perf:      cfg.Performance,
		OutputDir: cfg.OutputDir,
		TempDir:   cfg.TempDir,
	}

	return service.New(reg, orch, cfg), nil
}

const banner = `
██████╗  ██████╗ ██████╗  ██████╗ █████╗ ███████╗████████╗ ██████╗ ███████╗███╗   ██╗
██╔══██╗██╔═══██╗██╔══██╗██╔════╝██╔══██╗██╔════╝╚══██╔══╝██╔════╝ ██╔════╝████╗  ██║
██████╔╝██║   ██║██║  ██║██║     ███████║███████╗   ██║   ██║  ███╗█████╗  ██╔██╗ ██║
██╔═══╝ ██║   ██║██║  ██║██║     ██╔══██║╚════██║   ██║   ██║   ██║██╔══╝  ██║╚██╗██║
██║     ╚██████╔╝██████╔╝╚██████╗██║  ██║███████║   ██║   ╚██████╔╝███████╗██║ ╚████║
╚═╝      ╚═════╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝╚══════╝   ╚═╝    ╚═════╝ ╚══════╝╚═╝  ╚═══╝
`
