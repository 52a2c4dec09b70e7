package researcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/castlight-audio/podcastgen/internal/markdown"
)

// FetchedContent is the Content Fetcher collaborator's result shape
// (spec.md §6: fetch(source) -> {title, content, wordCount, source}).
type FetchedContent struct {
	Title     string
	Content   string
	WordCount int
	Source    string
}

// ContentFetcher is the external collaborator named in spec.md §6. The
// general-purpose fetcher is out of scope; this implementation only
// handles local file paths and plain HTTP(S) GET, which is enough to
// satisfy the source-grounding testable property (spec.md §8 scenario 2).
type ContentFetcher interface {
	Fetch(ctx context.Context, source string) (*FetchedContent, error)
}

type LocalFetcher struct {
	HTTPClient *http.Client
}

func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

func (f *LocalFetcher) Fetch(ctx context.Context, source string) (*FetchedContent, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}

	var body string
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = f.fetchHTTP(ctx, source)
	} else {
		body, err = f.fetchFile(source)
	}
	if err != nil {
		return nil, err
	}

	title := firstLine(body)
	return &FetchedContent{
		Title:     title,
		Content:   body,
		WordCount: markdown.RawWordCount(body),
		Source:    source,
	}, nil
}

func (f *LocalFetcher) fetchFile(path string) (string, error) {
	path = strings.TrimPrefix(path, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}
	return string(data), nil
}

func (f *LocalFetcher) fetchHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch source url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch source url: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read source url body: %w", err)
	}
	return string(data), nil
}

func firstLine(body string) string {
	lines := strings.SplitN(strings.TrimSpace(body), "\n", 2)
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(lines[0]), "#"))
}
