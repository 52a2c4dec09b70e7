package domain

// Plan is the parsed form of the Planner's (C2) markdown output (spec.md §3).
type Plan struct {
	Markdown string
	Chapters []PlanChapter
}

type PlanChapter struct {
	Number         int
	Title          string
	WordEstimate   int
	KeyPoints      []string
	Purpose        string
	ResearchFocus  string
}

// ResearchNotes is the Researcher's (C3) output. Markdown is either
// model-produced or a deterministic wrapper of fetched source text
// (spec.md §4.3); SourceGrounded records which, for the "zero model calls"
// testable property (spec.md §8).
type ResearchNotes struct {
	Markdown       string
	SourceGrounded bool
}

// Outline is the Outliner's (C4) parsed output.
type Outline struct {
	Markdown string
	Sections []OutlineSection
	Balance  AccuracyBucket
}

// OutlineSectionKind distinguishes the opening/chapter/closing sections.
type OutlineSectionKind string

const (
	OutlineSectionOpening OutlineSectionKind = "opening"
	OutlineSectionChapter OutlineSectionKind = "chapter"
	OutlineSectionClosing OutlineSectionKind = "closing"
)

type OutlineSection struct {
	Kind            OutlineSectionKind
	ChapterNumber   int // 0 for opening/closing
	DiscussionPoints []string
	Purpose         string
}

// ChapterScript is one Scripter (C5) call's output.
type ChapterScript struct {
	ChapterNumber    int
	Markdown         string
	SpokenWordCount  int
	TargetWords      int
	DeviationPercent float64
}

// ToneSet is the closed set of tone tags a ToneScript may use (spec.md §3).
var ToneSet = map[string]bool{
	"upbeat": true, "calm": true, "excited": true, "reflective": true,
	"suspenseful": true, "skeptical": true, "humorous": true, "serious": true,
	"curious": true, "confident": true,
}

// ToneSynonyms are historical synonyms the parser accepts but never
// normalizes (spec.md §9 Open Question: preserve in metadata, don't normalize).
var ToneSynonyms = map[string]bool{
	"sad": true, "hopeful": true, "empathetic": true, "angry": true,
}

// Speaker identifies which host an Utterance belongs to.
type Speaker string

const (
	SpeakerHost1 Speaker = "host1"
	SpeakerHost2 Speaker = "host2"
)

// Utterance is one sentence bound to one speaker and one tone: the unit of
// text-to-speech synthesis (spec.md GLOSSARY).
type Utterance struct {
	Index            int
	ChapterNumber    int
	Speaker          Speaker
	Tone             string
	Text             string
	WordCount        int
	EstimatedSeconds float64
}

// ToneScript is the Tone Annotator's (C6) output: markdown plus its parsed
// utterance sequence.
type ToneScript struct {
	Markdown   string
	Utterances []Utterance
}

// FinalScript is the Editor's (C7) output.
type FinalScript struct {
	Markdown        string
	SpokenWordCount int
	DeviationPercent float64
	ToneTagCount    int
}

// AudioArtifact is the fully assembled episode (C9).
type AudioArtifact struct {
	ChapterFiles []string // ordered, one per chapter
	FinalPath    string
	DurationSec  float64
	BitrateKbps  int
	Codec        string
	SampleRateHz int
}
