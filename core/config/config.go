// Package config loads environment-driven configuration for the podcast
// generation service, following the env-var-with-defaults pattern used
// throughout this codebase.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Env string

	TTS          TTSConfig
	Performance  PerformanceConfig
	Agents       AgentsConfig
	Constraints  ConstraintsConfig
	AllowedSets  AllowedSetsConfig
	Jobs         JobsConfig
	OpenAIAPIKey string
	OpenAIBase   string
	AnthropicKey string
	AnthropicBase string
	OutputDir    string
	TempDir      string
	JingleAsset  string
	OTel         OTelConfig
}

// TTSConfig controls speech synthesis (§6: tts.*).
type TTSConfig struct {
	Model       string
	VoiceHost1  string
	VoiceHost2  string
	Speed       float64
	Format      string
}

// PerformanceConfig controls word-budget and concurrency behavior (§6: performance.*).
type PerformanceConfig struct {
	WordsPerMinute        int
	TolerancePercent       float64
	MaxConcurrentAgents    int
}

// AgentsConfig holds the optional remote agent ids per role (§6: agents.{role}Id).
// An empty id forces fallback to the generic chat backend for that role.
type AgentsConfig struct {
	PlannerID       string
	ResearcherID    string
	OutlinerID      string
	ScripterID      string
	ToneAnnotatorID string
	EditorID        string
}

// ConstraintsConfig bounds the accepted Brief fields (§6: constraints.*).
type ConstraintsConfig struct {
	MinChapters     int
	MaxChapters     int
	MinDurationMin  int
	MaxDurationMin  int
	MaxTopicLength  int
	MaxFocusLength  int
}

// AllowedSetsConfig holds the closed enumerations for Brief.mood/style and tone tags.
type AllowedSetsConfig struct {
	Moods []string
	Styles []string
	Tones  []string
}

// JobsConfig bounds cross-job concurrency (Open Question in spec.md §9).
type JobsConfig struct {
	MaxConcurrent int
}

// OTelConfig mirrors the teacher's OTel toggle/endpoint configuration.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Headers        string
	enabled        bool
}

func (c OTelConfig) Enabled() bool { return c.enabled }

// Load loads configuration from environment variables, providing sensible
// defaults for every key spec.md §6 names.
func Load() Config {
	return Config{
		Env: getEnv("PODCASTGEN_ENV", "development"),
		TTS: TTSConfig{
			Model:      getEnv("TTS_MODEL", "tts-1"),
			VoiceHost1: getEnv("TTS_VOICE_HOST1", "alloy"),
			VoiceHost2: getEnv("TTS_VOICE_HOST2", "echo"),
			Speed:      getEnvFloat("TTS_SPEED", 1.0),
			Format:     getEnv("TTS_FORMAT", "mp3"),
		},
		Performance: PerformanceConfig{
			WordsPerMinute:      getEnvInt("PERFORMANCE_WORDS_PER_MINUTE", 150),
			TolerancePercent:    getEnvFloat("PERFORMANCE_TOLERANCE_PERCENT", 5.0),
			MaxConcurrentAgents: getEnvInt("PERFORMANCE_MAX_CONCURRENT_AGENTS", 5),
		},
		Agents: AgentsConfig{
			PlannerID:       getEnv("AGENTS_PLANNER_ID", ""),
			ResearcherID:    getEnv("AGENTS_RESEARCHER_ID", ""),
			OutlinerID:      getEnv("AGENTS_OUTLINER_ID", ""),
			ScripterID:      getEnv("AGENTS_SCRIPTER_ID", ""),
			ToneAnnotatorID: getEnv("AGENTS_TONE_ANNOTATOR_ID", ""),
			EditorID:        getEnv("AGENTS_EDITOR_ID", ""),
		},
		Constraints: ConstraintsConfig{
			MinChapters:    getEnvInt("CONSTRAINTS_MIN_CHAPTERS", 1),
			MaxChapters:    getEnvInt("CONSTRAINTS_MAX_CHAPTERS", 10),
			MinDurationMin: getEnvInt("CONSTRAINTS_MIN_DURATION_MIN", 1),
			MaxDurationMin: getEnvInt("CONSTRAINTS_MAX_DURATION_MIN", 120),
			MaxTopicLength: getEnvInt("CONSTRAINTS_MAX_TOPIC_LENGTH", 500),
			MaxFocusLength: getEnvInt("CONSTRAINTS_MAX_FOCUS_LENGTH", 1000),
		},
		AllowedSets: AllowedSetsConfig{
			Moods:  getEnvList("ALLOWED_MOODS", []string{"neutral", "excited", "calm", "reflective", "enthusiastic"}),
			Styles: getEnvList("ALLOWED_STYLES", []string{"storytelling", "conversational", "interview", "educational", "narrative"}),
			Tones: getEnvList("ALLOWED_TONES", []string{
				"upbeat", "calm", "excited", "reflective", "suspenseful",
				"skeptical", "humorous", "serious", "curious", "confident",
			}),
		},
		Jobs: JobsConfig{
			MaxConcurrent: getEnvInt("JOBS_MAX_CONCURRENT", runtime.NumCPU()),
		},
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBase:    getEnv("OPENAI_BASE_URL", ""),
		AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBase: getEnv("ANTHROPIC_BASE_URL", ""),
		OutputDir:     getEnv("PODCASTGEN_OUTPUT_DIR", "./output"),
		TempDir:       getEnv("PODCASTGEN_TEMP_DIR", "./tmp"),
		JingleAsset:   getEnv("PODCASTGEN_JINGLE_PATH", ""),
		OTel: OTelConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "podcastgen"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			enabled:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "") != "",
		},
	}
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
