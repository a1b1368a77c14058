package portfolio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxDocumentSize caps how much of a response body is read.
const maxDocumentSize = 8 << 20

// Source retrieves the raw portfolio document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// NewSource returns an HTTPSource for http(s) references and a FileSource
// for anything else.
func NewSource(ref string, timeout time.Duration) Source {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return &HTTPSource{URL: ref, Client: &http.Client{Timeout: timeout}}
	}
	return &FileSource{Path: ref}
}

// HTTPSource fetches the document with a plain GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) String() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: s.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: s.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{
			Source: s.URL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &FetchError{Source: s.URL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: s.Path, Err: err}
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &FetchError{Source: s.Path, Err: err}
	}
	return data, nil
}
