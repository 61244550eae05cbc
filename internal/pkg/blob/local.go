package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore stores blobs under a static directory on local disk, served by
// the application under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the static directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create static dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put writes the blob to disk under its key.
func (l *LocalStore) Put(ctx context.Context, key string, r io.Reader, meta Meta) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}

	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(l.dir)+string(os.PathSeparator)) {
		return Ref{}, fmt.Errorf("invalid blob key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Ref{}, fmt.Errorf("create blob dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return Ref{}, fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return Ref{}, fmt.Errorf("write blob: %w", err)
	}

	return Ref{Key: key, URL: l.baseURL + "/" + key, Size: n}, nil
}

// Delete removes the blob file. Missing files are not an error so compensating
// cleanup stays idempotent.
func (l *LocalStore) Delete(ctx context.Context, key string) error {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
