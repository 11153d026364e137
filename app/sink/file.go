package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var _ Writer = (*FileWriter)(nil)

// FileWriter stores objects under a local directory, keyed by relative path.
// Cache headers and ACLs have no file equivalent and are ignored.
type FileWriter struct {
	dir string
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

func (w *FileWriter) Path(key string) string {
	return filepath.Join(w.dir, filepath.FromSlash(key))
}

func (w *FileWriter) Put(ctx context.Context, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := w.Path(obj.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bow-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(obj.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move feed into place: %w", err)
	}

	slog.Info("Feed written", "path", path, "bytes", len(obj.Body))
	return nil
}
