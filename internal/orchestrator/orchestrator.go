// Package orchestrator implements the Orchestrator (C10): sequencing the
// pipeline stages end to end, managing the per-job scratch directory,
// reporting progress, and persisting artifacts (spec.md §4.10).
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/castlight-audio/podcastgen/common"
	"github.com/castlight-audio/podcastgen/common/logger"
	"github.com/castlight-audio/podcastgen/core/config"
	"github.com/castlight-audio/podcastgen/internal/audio"
	"github.com/castlight-audio/podcastgen/internal/domain"
	"github.com/castlight-audio/podcastgen/internal/editor"
	"github.com/castlight-audio/podcastgen/internal/outliner"
	"github.com/castlight-audio/podcastgen/internal/planner"
	"github.com/castlight-audio/podcastgen/internal/registry"
	"github.com/castlight-audio/podcastgen/internal/researcher"
	"github.com/castlight-audio/podcastgen/internal/scripter"
	"github.com/castlight-audio/podcastgen/internal/tone"
	"github.com/castlight-audio/podcastgen/internal/tts"
)

// Stage step labels, reported via registry.UpdateProgress (spec.md §4.10).
const (
	stepPlan     = "plan"
	stepResearch = "research"
	stepOutline  = "outline"
	stepScript   = "script"
	stepTone     = "tone"
	stepEdit     = "edit"
	stepAudio    = "audio"
)

type Orchestrator struct {
	Registry   *registry.Registry
	Planner    *planner.Planner
	Researcher *researcher.Researcher
	Outliner   *outliner.Outliner
	Scripter   *scripter.Scripter
	Tone       *tone.Annotator
	Editor     *editor.Editor
	TTS        *tts.Synthesizer
	Audio      *audio.Assembler
	Perf       config.PerformanceConfig
	OutputDir  string
	TempDir    string
}

// Run executes the full pipeline for an already-registered, queued job. It
// owns the job's scratch directory for its entire lifetime: created at the
// start, removed on every exit path (spec.md §4.10 rule "scratch directory
// guaranteed cleanup").
func (o *Orchestrator) Run(ctx context.Context, jobID uuid.UUID) {
	jobSpan := logger.StartSpan(ctx, "orchestrator.run", trace.WithAttributes(attribute.String("job_id", jobID.String())))
	ctx = jobSpan.Context()
	defer jobSpan.End()

	job, ok := o.Registry.Get(jobID)
	if !ok {
		slog.ErrorContext(ctx, "orchestrator: job not found", "job_id", jobID)
		return
	}

	scratchDir := filepath.Join(o.TempDir, jobID.String())
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		o.fail(ctx, jobID, domain.NewStageError(domain.ErrorKindInternal, "orchestrator", fmt.Errorf("create scratch dir: %w", err)))
		return
	}
	defer os.RemoveAll(scratchDir)

	started := time.Now()
	if err := o.Registry.Transition(jobID, domain.JobStateProcessing, func(j *domain.Job) { j.StartedAt = &started }); err != nil {
		slog.ErrorContext(ctx, "orchestrator: cannot start job", "job_id", jobID, "error", err)
		return
	}

	budget := domain.NewWordBudget(job.Brief, o.Perf)

	if o.cancelled(ctx, jobID) {
		return
	}
	planCtx, planSpan := o.stageSpan(ctx, "orchestrator.plan")
	plan, err := o.Planner.Plan(planCtx, job.Brief, budget)
	planSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	o.progress(jobID, stepPlan, 1, func(j *domain.Job) { j.Artifacts.Plan = plan.Markdown })

	if o.cancelled(ctx, jobID) {
		return
	}
	researchCtx, researchSpan := o.stageSpan(ctx, "orchestrator.research")
	notes, err := o.Researcher.Research(researchCtx, job.Brief, plan)
	researchSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	o.progress(jobID, stepResearch, 2, func(j *domain.Job) { j.Artifacts.Research = notes.Markdown })

	if o.cancelled(ctx, jobID) {
		return
	}
	outlineCtx, outlineSpan := o.stageSpan(ctx, "orchestrator.outline")
	outline, err := o.Outliner.Outline(outlineCtx, plan, notes, budget)
	outlineSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	o.progress(jobID, stepOutline, 3, func(j *domain.Job) { j.Artifacts.Outline = outline.Markdown })

	if o.cancelled(ctx, jobID) {
		return
	}
	scriptCtx, scriptSpan := o.stageSpan(ctx, "orchestrator.script")
	scripts, err := o.Scripter.ScriptAll(scriptCtx, outline, job.Brief, budget)
	scriptSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	chapterMarkdowns := make([]string, len(scripts))
	for i, s := range scripts {
		chapterMarkdowns[i] = s.Markdown
	}
	o.progress(jobID, stepScript, 4, func(j *domain.Job) { j.Artifacts.Scripts = chapterMarkdowns })

	if o.cancelled(ctx, jobID) {
		return
	}
	toneCtx, toneSpan := o.stageSpan(ctx, "orchestrator.tone")
	toneScript, err := o.Tone.Annotate(toneCtx, scripts, job.Brief)
	toneSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	o.progress(jobID, stepTone, 5, func(j *domain.Job) { j.Artifacts.ToneScript = toneScript.Markdown })

	if o.cancelled(ctx, jobID) {
		return
	}
	editCtx, editSpan := o.stageSpan(ctx, "orchestrator.edit")
	final, warnings, err := o.Editor.Edit(editCtx, toneScript, budget)
	editSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	for _, w := range warnings {
		slog.WarnContext(ctx, "orchestrator: editor warning", "job_id", jobID, "warning", w)
	}
	o.progress(jobID, stepEdit, 6, func(j *domain.Job) { j.Artifacts.FinalScript = final.Markdown })

	if o.cancelled(ctx, jobID) {
		return
	}
	audioCtx, audioSpan := o.stageSpan(ctx, "orchestrator.audio")
	audioArtifact, err := o.assembleAudio(audioCtx, scratchDir, jobID, job.Brief.Topic, final)
	audioSpan.End()
	if err != nil {
		o.fail(ctx, jobID, err)
		return
	}
	o.progress(jobID, stepAudio, domain.TotalSteps, nil)

	arc := tone.AnalyzeArc(toneScript.Utterances)
	metadata := &domain.JobMetadata{
		Duration:             time.Since(started),
		WordCount:            final.SpokenWordCount,
		Chapters:             len(scripts),
		ActualWordsPerMinute: wordsPerMinute(final.SpokenWordCount, audioArtifact.DurationSec),
		Accuracy:             domain.ClassifyAccuracy(budget.TotalWords, final.SpokenWordCount),
		GenerationTimeMs:      time.Since(started).Milliseconds(),
		ArcOpening:           arc.Opening,
		ArcMiddle:            arc.Middle,
		ArcClosing:           arc.Closing,
	}

	completed := time.Now()
	err = o.Registry.Transition(jobID, domain.JobStateCompleted, func(j *domain.Job) {
		j.AudioPath = audioArtifact.FinalPath
		j.Metadata = metadata
		j.CompletedAt = &completed
	})
	if err != nil {
		slog.ErrorContext(ctx, "orchestrator: failed to mark job completed", "job_id", jobID, "error", err)
	}
}

// assembleAudio parses ToneScript utterances, synthesizes each, groups them
// by chapter, and assembles the final episode file.
func (o *Orchestrator) assembleAudio(ctx context.Context, scratchDir string, jobID uuid.UUID, topic string, final domain.FinalScript) (domain.AudioArtifact, error) {
	utterances := tone.Parse(final.Markdown)

	utteranceFiles, err := o.TTS.SynthesizeAll(ctx, scratchDir, utterances)
	if err != nil {
		return domain.AudioArtifact{}, err
	}

	byChapter := groupByChapter(utterances, utteranceFiles)

	var chapterFiles []string
	for _, chapterNum := range sortedChapterNumbers(byChapter) {
		chapterPath := filepath.Join(scratchDir, fmt.Sprintf("chapter-%d.mp3", chapterNum))
		if err := o.Audio.AssembleChapter(ctx, byChapter[chapterNum], chapterPath); err != nil {
			return domain.AudioArtifact{}, err
		}
		chapterFiles = append(chapterFiles, chapterPath)
	}

	slug, err := common.Slugify(topic, "episode")
	if err != nil {
		slug = "episode"
	}
	finalPath := filepath.Join(o.OutputDir, fmt.Sprintf("%s-%s.mp3", slug, jobID.String()))
	artifact, err := o.Audio.AssembleFinal(ctx, chapterFiles, finalPath)
	if err != nil {
		return domain.AudioArtifact{}, err
	}

	if err := o.persistArtifacts(jobID, artifact); err != nil {
		slog.WarnContext(ctx, "orchestrator: failed to persist artifact metadata", "job_id", jobID, "error", err)
	}

	return artifact, nil
}

func (o *Orchestrator) persistArtifacts(jobID uuid.UUID, artifact domain.AudioArtifact) error {
	path := filepath.Join(o.OutputDir, jobID.String()+".json")
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func groupByChapter(utterances []domain.Utterance, files []string) map[int][]string {
	byChapter := make(map[int][]string)
	for i, u := range utterances {
		byChapter[u.ChapterNumber] = append(byChapter[u.ChapterNumber], files[i])
	}
	return byChapter
}

func sortedChapterNumbers(byChapter map[int][]string) []int {
	nums := make([]int, 0, len(byChapter))
	for n := range byChapter {
		nums = append(nums, n)
	}
	for i := 1; i < len(nums); i++ {
		for j := i; j > 0 && nums[j] < nums[j-1]; j-- {
			nums[j], nums[j-1] = nums[j-1], nums[j]
		}
	}
	return nums
}

func wordsPerMinute(words int, seconds float64) float64 {
	if seconds == 0 {
		return 0
	}
	return float64(words) / (seconds / 60)
}

// progress advances step tracking and, when storeArtifact is non-nil,
// writes the stage's markdown artifact directly onto the live registry job
// (spec.md §4.10: progress must be monotone non-decreasing and artifacts
// must be visible to status() as each stage completes).
func (o *Orchestrator) progress(jobID uuid.UUID, step string, completed int, storeArtifact func(j *domain.Job)) {
	if storeArtifact != nil {
		if err := o.Registry.Mutate(jobID, storeArtifact); err != nil {
			slog.Error("orchestrator: failed to store artifact", "job_id", jobID, "step", step, "error", err)
		}
	}
	if err := o.Registry.UpdateProgress(jobID, step, completed); err != nil {
		slog.Error("orchestrator: failed to update progress", "job_id", jobID, "step", step, "error", err)
	}
}

// stageSpan starts a child span for one pipeline stage, tagged under the
// same tracer as the job-level span started in Run.
func (o *Orchestrator) stageSpan(ctx context.Context, name string) (context.Context, *logger.SpanContext) {
	sc := logger.StartSpan(ctx, name)
	return sc.Context(), sc
}

func (o *Orchestrator) cancelled(ctx context.Context, jobID uuid.UUID) bool {
	job, ok := o.Registry.Get(jobID)
	if !ok {
		return true
	}
	if job.State == domain.JobStateCancelled {
		return true
	}
	select {
	case <-ctx.Done():
		o.Registry.Transition(jobID, domain.JobStateCancelled, nil)
		return true
	default:
		return false
	}
}

func (o *Orchestrator) fail(ctx context.Context, jobID uuid.UUID, err error) {
	kind := domain.KindOf(err)
	slog.ErrorContext(ctx, "orchestrator: stage failed", "job_id", jobID, "kind", kind, "error", err)

	now := time.Now()
	transErr := o.Registry.Transition(jobID, domain.JobStateFailed, func(j *domain.Job) {
		j.ErrorKind = kind
		j.ErrorMessage = err.Error()
		j.CompletedAt = &now
	})
	if transErr != nil {
		slog.ErrorContext(ctx, "orchestrator: failed to mark job failed", "job_id", jobID, "error", transErr)
	}

	o.cleanupPartialOutputs(jobID)
}

func (o *Orchestrator) cleanupPartialOutputs(jobID uuid.UUID) {
	if matches, err := filepath.Glob(filepath.Join(o.OutputDir, "*-"+jobID.String()+".mp3")); err == nil {
		for _, m := range matches {
			os.Remove(m)
		}
	}
	os.Remove(filepath.Join(o.OutputDir, jobID.String()+".json"))
}
