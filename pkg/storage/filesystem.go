package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

// Dir is the workspace directory holding taskboard state.
const Dir = ".taskboard"

// FileStore keeps one file per key under <root>/.taskboard.
type FileStore struct {
	root        string
	retryConfig retry.Config
}

func NewFileStore(root string) *FileStore {
	return &FileStore{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (s *FileStore) Root() string {
	return s.root
}

// ResolvePath ensures the path is within the .taskboard directory and prevents traversal.
func (s *FileStore) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Clean(filepath.Join(s.root, Dir))
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (s *FileStore) Initialize() error {
	if err := os.MkdirAll(filepath.Join(s.root, Dir), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.ResolvePath(key)
	if err != nil {
		return nil, err
	}

	retryer := retry.New[[]byte](s.retryConfig)
	data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			// Absent is an answer, not a failure; no point retrying it.
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// Set writes value through a temp file and rename so readers never see a
// partial value.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.ResolvePath(key)
	if err != nil {
		return err
	}
	if err := s.Initialize(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	path, err := s.ResolvePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
