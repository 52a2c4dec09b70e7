package audio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/castlight-audio/podcastgen/internal/audio"
)

func TestAssembleChapterSingleFileCopiesWithoutFfmpeg(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "utterance-0.mp3")
	if err := os.WriteFile(input, []byte("fake-audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "chapter-1.mp3")

	a := audio.New("")
	if err := a.AssembleChapter(context.Background(), []string{input}, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if string(data) != "fake-audio" {
		t.Errorf("output content = %q, want fake-audio", data)
	}
}

func TestAssembleChapterFailsOnEmptyInput(t *testing.T) {
	dir := t.TempDir()
	a := audio.New("")
	output := filepath.Join(dir, "chapter-1.mp3")

	err := a.AssembleChapter(context.Background(), nil, output)
	if err == nil {
		t.Fatal("expected error for empty utterance file list")
	}
	if _, statErr := os.Stat(output); statErr == nil {
		t.Error("expected no partial output file to be left behind")
	}
}
