package blob

import (
	"context"
	"io"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
)

// RetryStore decorates a Store with bounded retries on transient failures.
// Permanent errors pass through immediately. After the attempt budget is
// spent the last error surfaces as a classified transient error.
type RetryStore struct {
	inner    Store
	attempts int
	backoff  time.Duration
}

// WithRetry wraps a store with the default retry policy.
func WithRetry(inner Store) *RetryStore {
	return &RetryStore{inner: inner, attempts: defaultAttempts, backoff: defaultBackoff}
}

func (r *RetryStore) Put(ctx context.Context, key string, body io.Reader, meta Meta) (Ref, error) {
	// Puts retry only when the body is seekable; a consumed reader cannot be
	// replayed, so those fail after the first transient error.
	seeker, seekable := body.(io.Seeker)

	var ref Ref
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if !seekable {
				break
			}
			if _, serr := seeker.Seek(0, io.SeekStart); serr != nil {
				break
			}
			if werr := r.wait(ctx, attempt); werr != nil {
				return Ref{}, werr
			}
		}
		ref, err = r.inner.Put(ctx, key, body, meta)
		if err == nil {
			return ref, nil
		}
		if !isTransient(err) {
			return Ref{}, err
		}
	}
	return Ref{}, AsAPIError(err)
}

func (r *RetryStore) Delete(ctx context.Context, key string) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if werr := r.wait(ctx, attempt); werr != nil {
				return werr
			}
		}
		err = r.inner.Delete(ctx, key)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
	}
	return AsAPIError(err)
}

func (r *RetryStore) wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.backoff * time.Duration(attempt)):
		return nil
	}
}
