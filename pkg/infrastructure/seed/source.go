// Package seed loads template documents that seed a fresh task list.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

var (
	// ErrUnavailable means the template could not be fetched.
	ErrUnavailable = errors.New("template unavailable")
	// ErrMalformed means the template document does not have the expected shape.
	ErrMalformed = errors.New("template malformed")
)

const templateSchemaJSON = `{
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text": {"type": "string"}
        }
      }
    }
  }
}`

var templateSchemaLoader = gojsonschema.NewStringLoader(templateSchemaJSON)

//go:embed tasks.json
var defaultTemplate []byte

// Source supplies the template document.
type Source interface {
	Fetch(ctx context.Context) (todo.Template, error)
	// Describe names the source for logs.
	Describe() string
}

// Parse validates and decodes a template document.
func Parse(data []byte) (todo.Template, error) {
	result, err := gojsonschema.Validate(templateSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return todo.Template{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return todo.Template{}, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(issues, "; "))
	}

	var tpl todo.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return todo.Template{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return tpl, nil
}

// EmbeddedSource serves the template bundled with the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(context.Context) (todo.Template, error) {
	return Parse(defaultTemplate)
}

func (EmbeddedSource) Describe() string { return "embedded" }

// FileSource reads a template from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) (todo.Template, error) {
	if err := ctx.Err(); err != nil {
		return todo.Template{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return todo.Template{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Parse(data)
}

func (s FileSource) Describe() string { return "file:" + s.Path }

// HTTPSource fetches a template over HTTP with retries and an overall timeout.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	Timeout  time.Duration
	Attempts int
	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration
}

const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
)

func (s HTTPSource) Fetch(ctx context.Context) (todo.Template, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	limit := s.Timeout
	if limit <= 0 {
		limit = DefaultTimeout
	}
	attempts := s.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	delay := s.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	r := retry.New[[]byte](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  delay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[[]byte](timeout.Config{DefaultTimeout: limit})

	data, err := t.Execute(ctx, limit, func(ctx context.Context) ([]byte, error) {
		return r.Do(ctx, func(ctx context.Context) ([]byte, error) {
			return s.get(ctx, client)
		})
	})
	if err != nil {
		return todo.Template{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, s.URL, err)
	}
	return Parse(data)
}

func (s HTTPSource) get(ctx context.Context, client *http.Client) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (s HTTPSource) Describe() string { return s.URL }

// SourceOptions selects a Source. URL wins over Path; with neither the
// embedded template is used.
type SourceOptions struct {
	URL      string
	Path     string
	Timeout  time.Duration
	Attempts int
}

// NewSource returns the Source described by opts.
func NewSource(opts SourceOptions) Source {
	switch {
	case opts.URL != "":
		return HTTPSource{URL: opts.URL, Timeout: opts.Timeout, Attempts: opts.Attempts}
	case opts.Path != "":
		return FileSource{Path: opts.Path}
	default:
		return EmbeddedSource{}
	}
}
