package domain

import (
	"fmt"
	"strings"

	"github.com/castlight-audio/podcastgen/core/config"
)

// Brief is the user's input record that parameterizes a generation job.
// Immutable once a job is accepted.
type Brief struct {
	Topic       string
	Focus       string
	Mood        string
	Style       string
	Chapters    int
	DurationMin int
	Source      string
}

// WordBudget is derived once by the Planner (C2) from a Brief.
type WordBudget struct {
	TotalWords      int
	PerChapter      int
	TolerancePercent float64
}

// NewWordBudget computes the budget per spec.md §3:
// totalWords = durationMin * wordsPerMinute; perChapter = totalWords / chapters (rounded).
func NewWordBudget(brief Brief, cfg config.PerformanceConfig) WordBudget {
	total := brief.DurationMin * cfg.WordsPerMinute
	perChapter := 0
	if brief.Chapters > 0 {
		perChapter = (total + brief.Chapters/2) / brief.Chapters
	}
	return WordBudget{
		TotalWords:       total,
		PerChapter:       perChapter,
		TolerancePercent: cfg.TolerancePercent,
	}
}

// ValidationResult is returned by Validate and by the Job-API's validate()
// operation (spec.md §6).
type ValidationResult struct {
	Valid           bool
	Warnings        []string
	Recommendations []string
	Estimates       Estimates
}

// Estimates is the validate() estimate block (spec.md §6).
type Estimates struct {
	TargetWords       int
	WordsPerChapter   int
	EstimatedDuration int // seconds
	ProcessingTime    int // seconds, soft ETA per spec.md §5 (12x durationMin)
}

// Validate checks a Brief against the configured constraints (spec.md §3/§6).
// A hard violation returns (result{Valid:false}, *StageError{Kind: validation}).
// Soft concerns (e.g. chapters disproportionate to duration) are reported as
// warnings without rejecting the brief.
func Validate(brief Brief, cfg config.ConstraintsConfig, allowed config.AllowedSetsConfig, perf config.PerformanceConfig) (ValidationResult, *StageError) {
	var result ValidationResult

	if strings.TrimSpace(brief.Topic) == "" {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("topic must not be empty"))
	}
	if len(brief.Topic) > cfg.MaxTopicLength {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("topic exceeds %d characters", cfg.MaxTopicLength))
	}
	if len(brief.Focus) > cfg.MaxFocusLength {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("focus exceeds %d characters", cfg.MaxFocusLength))
	}
	if !contains(allowed.Moods, brief.Mood) {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("mood %q not in allowed set %v", brief.Mood, allowed.Moods))
	}
	if !contains(allowed.Styles, brief.Style) {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("style %q not in allowed set %v", brief.Style, allowed.Styles))
	}
	if brief.Chapters < cfg.MinChapters || brief.Chapters > cfg.MaxChapters {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("chapters %d outside [%d,%d]", brief.Chapters, cfg.MinChapters, cfg.MaxChapters))
	}
	if brief.DurationMin < cfg.MinDurationMin || brief.DurationMin > cfg.MaxDurationMin {
		return result, NewStageError(ErrorKindValidation, "validate", fmt.Errorf("durationMin %d outside [%d,%d]", brief.DurationMin, cfg.MinDurationMin, cfg.MaxDurationMin))
	}

	result.Valid = true

	if brief.Chapters > brief.DurationMin*2 {
		result.Warnings = append(result.Warnings, "chapter count is high relative to duration; chapters may be very short")
	}

	budget := NewWordBudget(brief, perf)
	result.Estimates = Estimates{
		TargetWords:       budget.TotalWords,
		WordsPerChapter:   budget.PerChapter,
		EstimatedDuration: brief.DurationMin * 60,
		ProcessingTime:    brief.DurationMin * 12,
	}

	return result, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
