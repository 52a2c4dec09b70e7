package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobState is the Job's tagged-variant state (spec.md §3/§4.10), encoded as
// a closed string-enum type rather than a bare string so transitions can be
// validated centrally instead of by convention.
type JobState string

const (
	JobStateQueued     JobState = "queued"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
	JobStateCancelled  JobState = "cancelled"
)

// validTransitions encodes the state machine diagram in spec.md §4.10.
// Transitions out of completed/failed/cancelled are forbidden: those keys
// are simply absent (their transition sets are empty).
var validTransitions = map[JobState]map[JobState]bool{
	JobStateQueued: {
		JobStateProcessing: true,
		JobStateCancelled:  true,
	},
	JobStateProcessing: {
		JobStateCompleted: true,
		JobStateFailed:    true,
		JobStateCancelled: true,
	},
}

// CanTransitionTo reports whether moving from s to next is a legal edge in
// the Job state machine.
func (s JobState) CanTransitionTo(next JobState) bool {
	return validTransitions[s][next]
}

// IsTerminal reports whether s is one of the three absorbing states.
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed || s == JobStateCancelled
}

// TotalSteps is the fixed pipeline length C10 reports progress against:
// Plan, Research, Outline, Scripts, Tone, Editor, TTS+Assembly (spec.md §4.10).
const TotalSteps = 7

// JobMetadata is computed by the Orchestrator on success (spec.md §4.10 rule 4).
type JobMetadata struct {
	Duration              time.Duration
	WordCount             int
	Chapters              int
	ActualWordsPerMinute  float64
	Accuracy              AccuracyBucket
	GenerationTimeMs      int64
	// ArcOpening/ArcMiddle/ArcClosing record the dominant tone tag across each
	// third of the episode's utterances (spec.md §4.6 "Arc analysis",
	// advisory only — not an invariant).
	ArcOpening string
	ArcMiddle  string
	ArcClosing string
}

// AccuracyBucket classifies how close a word count landed to its target
// (spec.md §4.4): excellent <=5%, good <=10%, fair <=20%, poor otherwise.
// Classification is idempotent: the same (target, actual) pair always maps
// to the same bucket (spec.md §8).
type AccuracyBucket string

const (
	AccuracyExcellent AccuracyBucket = "excellent"
	AccuracyGood      AccuracyBucket = "good"
	AccuracyFair      AccuracyBucket = "fair"
	AccuracyPoor      AccuracyBucket = "poor"
)

// ClassifyAccuracy buckets the deviation between actual and target word counts.
func ClassifyAccuracy(target, actual int) AccuracyBucket {
	if target == 0 {
		return AccuracyPoor
	}
	dev := deviationPercent(target, actual)
	switch {
	case dev <= 5:
		return AccuracyExcellent
	case dev <= 10:
		return AccuracyGood
	case dev <= 20:
		return AccuracyFair
	default:
		return AccuracyPoor
	}
}

func deviationPercent(target, actual int) float64 {
	if target == 0 {
		return 100
	}
	d := float64(actual-target) / float64(target) * 100
	if d < 0 {
		d = -d
	}
	return d
}

// Artifacts is the Job's artifact map (spec.md §3 "Ownership summary").
type Artifacts struct {
	Plan        string
	Research    string
	Outline     string
	Scripts     []string
	ToneScript  string
	FinalScript string
}

// Job is exclusively owned by the Job Registry; the Orchestrator mutates it
// only through registry operations (spec.md §3/§4.11).
type Job struct {
	ID             uuid.UUID
	Brief          Brief
	State          JobState
	CurrentStep    string
	StepsCompleted int
	TotalSteps     int
	Artifacts      Artifacts
	AudioPath      string
	Metadata       *JobMetadata
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	ErrorKind      ErrorKind
	ErrorMessage   string
}

// NewJob constructs a freshly queued Job for an accepted Brief.
func NewJob(brief Brief) *Job {
	return &Job{
		ID:         uuid.New(),
		Brief:      brief,
		State:      JobStateQueued,
		TotalSteps: TotalSteps,
		CreatedAt:  time.Now(),
	}
}

// Summary is the reduced view returned by list() (spec.md §6).
type Summary struct {
	ID             uuid.UUID
	State          JobState
	Topic          string
	StepsCompleted int
	TotalSteps     int
	CreatedAt      time.Time
}

func (j *Job) Summary() Summary {
	return Summary{
		ID:             j.ID,
		State:          j.State,
		Topic:          j.Brief.Topic,
		StepsCompleted: j.StepsCompleted,
		TotalSteps:     j.TotalSteps,
		CreatedAt:      j.CreatedAt,
	}
}
