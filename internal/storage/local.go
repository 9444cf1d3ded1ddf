package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

// Local stores uploads and processed artifacts in two directories on disk.
type Local struct {
	inputsDir  string
	outputsDir string
}

func NewLocal(inputsDir, outputsDir string) (*Local, error) {
	for _, dir := range []string{inputsDir, outputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	return &Local{
		inputsDir:  inputsDir,
		outputsDir: outputsDir,
	}, nil
}

func (l *Local) SaveUpload(_ context.Context, name string, r io.Reader, limit int64) (_ string, err error) {
	path := filepath.Join(l.inputsDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			err = errors.Join(err, os.Remove(path))
		}
	}()

	// Read one byte past the limit so an oversize stream is detected without
	// draining it.
	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}

	if written > limit {
		return "", domain.ErrFileTooLarge
	}

	return path, nil
}

func (l *Local) OpenUpload(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %q: %w", path, err)
	}

	return f, nil
}

func (l *Local) DeleteUpload(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload %q: %w", path, err)
	}

	return nil
}

func (l *Local) SaveProcessed(_ context.Context, name string, r io.Reader) (_ string, err error) {
	path := filepath.Join(l.outputsDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}

	return path, nil
}

func (l *Local) OpenProcessed(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrArtifactMissing
		}

		return nil, fmt.Errorf("failed to open artifact %q: %w", path, err)
	}

	return f, nil
}
