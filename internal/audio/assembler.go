// Package audio implements the Audio Assembler (C9): concatenating
// per-utterance audio into per-chapter files, an optional jingle prefix, a
// final concatenation, and duration/bitrate probing, all via ffmpeg/ffprobe
// subprocesses.
//
// Grounded on jackzampolin-shelf's tts_generate_openai/ffmpeg.go: the concat
// demuxer + escaped-path list-file approach, and ffprobe for duration.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/castlight-audio/podcastgen/internal/domain"
)

const stage = "audio"

type Assembler struct {
	JingleAsset string // optional path; empty disables the jingle prefix
}

func New(jingleAsset string) *Assembler { return &Assembler{JingleAsset: jingleAsset} }

// AssembleChapter concatenates one chapter's ordered utterance files into a
// single chapter audio file.
func (a *Assembler) AssembleChapter(ctx context.Context, utteranceFiles []string, outputPath string) error {
	if len(utteranceFiles) == 0 {
		return domain.NewStageError(domain.ErrorKindAudio, stage, fmt.Errorf("no utterance files for chapter"))
	}
	if err := concat(ctx, utteranceFiles, outputPath); err != nil {
		cleanup(outputPath)
		return domain.NewStageError(domain.ErrorKindAudio, stage, err)
	}
	return nil
}

// AssembleFinal concatenates ordered chapter files (with an optional jingle
// prefix) into the final episode file, then probes the result.
func (a *Assembler) AssembleFinal(ctx context.Context, chapterFiles []string, outputPath string) (domain.AudioArtifact, error) {
	inputs := make([]string, 0, len(chapterFiles)+1)
	if a.JingleAsset != "" {
		if _, err := os.Stat(a.JingleAsset); err == nil {
			inputs = append(inputs, a.JingleAsset)
		}
	}
	inputs = append(inputs, chapterFiles...)

	if err := concat(ctx, inputs, outputPath); err != nil {
		cleanup(outputPath)
		return domain.AudioArtifact{}, domain.NewStageError(domain.ErrorKindAudio, stage, err)
	}

	probe, err := Probe(ctx, outputPath)
	if err != nil {
		cleanup(outputPath)
		return domain.AudioArtifact{}, domain.NewStageError(domain.ErrorKindAudio, stage, err)
	}

	return domain.AudioArtifact{
		ChapterFiles: chapterFiles,
		FinalPath:    outputPath,
		DurationSec:  probe.DurationSec,
		BitrateKbps:  probe.BitrateKbps,
		Codec:        probe.Codec,
		SampleRateHz: probe.SampleRateHz,
	}, nil
}

// concat uses ffmpeg's concat demuxer via an escaped list file, matching
// the teacher's concatenateWithFFmpeg.
func concat(ctx context.Context, inputFiles []string, outputPath string) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no input files provided")
	}

	if len(inputFiles) == 1 {
		data, err := os.ReadFile(inputFiles[0])
		if err != nil {
			return fmt.Errorf("read single input file: %w", err)
		}
		return os.WriteFile(outputPath, data, 0o644)
	}

	listPath := outputPath + ".txt"
	var lines []string
	for _, f := range inputFiles {
		escaped := strings.ReplaceAll(f, "'", "'\\''")
		lines = append(lines, fmt.Sprintf("file '%s'", escaped))
	}
	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:a", "libmp3lame",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w\noutput: %s", err, string(output))
	}
	return nil
}

// ProbeResult is the subset of ffprobe output C9/C10 record on the final
// AudioArtifact.
type ProbeResult struct {
	DurationSec  float64
	BitrateKbps  int
	Codec        string
	SampleRateHz int
}

// Probe reads duration, bitrate, codec, and sample rate via ffprobe.
func Probe(ctx context.Context, path string) (ProbeResult, error) {
	durCmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration,bit_rate",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	out, err := durCmd.Output()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe format: %w", err)
	}

	var result ProbeResult
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "duration":
			fmt.Sscanf(parts[1], "%f", &result.DurationSec)
		case "bit_rate":
			if bps, err := strconv.Atoi(parts[1]); err == nil {
				result.BitrateKbps = bps / 1000
			}
		}
	}

	streamCmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	streamOut, err := streamCmd.Output()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe stream: %w", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(streamOut)), "\n") {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "codec_name":
			result.Codec = parts[1]
		case "sample_rate":
			if sr, err := strconv.Atoi(parts[1]); err == nil {
				result.SampleRateHz = sr
			}
		}
	}

	return result, nil
}

// CheckAvailable reports whether ffmpeg and ffprobe are reachable, mirroring
// the teacher's CheckFFmpegAvailable preflight.
func CheckAvailable() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return nil
}

// cleanup removes a partially written output file, matching C9/C10's
// "no partial outputs survive a failure" invariant.
func cleanup(path string) {
	os.Remove(path)
}
