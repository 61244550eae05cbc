// Package blob abstracts file storage behind a store/retrieve-by-reference
// interface. Two implementations exist: S3-compatible object storage and a
// local static directory. Callers always go through a RetryStore so transient
// storage failures surface as retryable errors, not fatal ones.
package blob

import (
	"context"
	"errors"
	"io"

	"github.com/chyrplite/core/internal/pkg/apierror"
)

// Meta describes the file being stored.
type Meta struct {
	Name        string
	ContentType string
	Size        int64
}

// Ref is the reference returned for a stored blob.
type Ref struct {
	Key  string // store-internal object key, used for deletion
	URL  string // public URL
	Size int64
}

// Store is the storage collaborator contract.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, meta Meta) (Ref, error)
	Delete(ctx context.Context, key string) error
}

// transientError marks a storage failure as retryable.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// AsAPIError converts a storage error into the shared taxonomy.
func AsAPIError(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return apierror.Wrap(apierror.KindStorageTransient, "blob store unavailable", err)
	}
	return err
}

func isTransient(err error) bool {
	// Storage timeouts are retryable by contract.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te *transientError
	return errors.As(err, &te)
}
