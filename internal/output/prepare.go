package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
)

// LockedFileError reports a stale output file that could not be removed,
// typically because another process holds it open.
type LockedFileError struct {
	Path string
	Err  error
}

func (e *LockedFileError) Error() string {
	return fmt.Sprintf("output file is locked by another process: %s (close any open section files or previews and retry): %v", e.Path, e.Err)
}

func (e *LockedFileError) Unwrap() error { return e.Err }

// RemoveAttempts and RemoveDelay bound the retries for each stale file.
var (
	RemoveAttempts uint = 5
	RemoveDelay         = 200 * time.Millisecond
)

// Prepare creates dir and its sections directory, and removes section
// documents left over from an earlier run. Other files are kept.
func Prepare(ctx context.Context, dir string) (string, error) {
	sections := filepath.Join(dir, SectionsDir)
	if err := os.MkdirAll(sections, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	for _, pattern := range []string{"*.md", "*.html"} {
		stale, err := filepath.Glob(filepath.Join(sections, pattern))
		if err != nil {
			return "", fmt.Errorf("list stale sections: %w", err)
		}
		for _, path := range stale {
			if err := removeWithRetry(ctx, path); err != nil {
				return "", &LockedFileError{Path: path, Err: err}
			}
		}
	}
	return sections, nil
}

func removeWithRetry(ctx context.Context, path string) error {
	return retry.Do(
		func() error {
			err := os.Remove(path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(RemoveAttempts),
		retry.Delay(RemoveDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
