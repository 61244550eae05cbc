package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chyrplite/core/internal/pkg/apierror"
)

type flakyStore struct {
	putCalls    int
	deleteCalls int
	failPuts    int
	failDeletes int
	err         error
}

func (s *flakyStore) Put(_ context.Context, key string, r io.Reader, meta Meta) (Ref, error) {
	s.putCalls++
	if s.putCalls <= s.failPuts {
		return Ref{}, s.err
	}
	return Ref{Key: key, URL: "/files/" + key}, nil
}

func (s *flakyStore) Delete(context.Context, string) error {
	s.deleteCalls++
	if s.deleteCalls <= s.failDeletes {
		return s.err
	}
	return nil
}

func fastRetry(inner Store) *RetryStore {
	return &RetryStore{inner: inner, attempts: 3, backoff: time.Millisecond}
}

func TestRetryStorePutRecoversFromTransientFailure(t *testing.T) {
	inner := &flakyStore{failPuts: 2, err: Transient(errors.New("connection reset"))}
	store := fastRetry(inner)

	ref, err := store.Put(context.Background(), "k", strings.NewReader("data"), Meta{})
	require.NoError(t, err)
	assert.Equal(t, "k", ref.Key)
	assert.Equal(t, 3, inner.putCalls)
}

func TestRetryStorePutGivesUpAfterBudget(t *testing.T) {
	inner := &flakyStore{failPuts: 10, err: Transient(errors.New("still down"))}
	store := fastRetry(inner)

	_, err := store.Put(context.Background(), "k", strings.NewReader("data"), Meta{})
	require.Error(t, err)
	assert.Equal(t, apierror.KindStorageTransient, apierror.KindOf(err))
	assert.Equal(t, 3, inner.putCalls)
}

func TestRetryStorePutPermanentErrorFailsFast(t *testing.T) {
	inner := &flakyStore{failPuts: 10, err: errors.New("access denied")}
	store := fastRetry(inner)

	_, err := store.Put(context.Background(), "k", strings.NewReader("data"), Meta{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.putCalls)
	assert.NotEqual(t, apierror.KindStorageTransient, apierror.KindOf(err))
}

func TestRetryStorePutUnseekableBodyDoesNotRetry(t *testing.T) {
	inner := &flakyStore{failPuts: 10, err: Transient(errors.New("flap"))}
	store := fastRetry(inner)

	// MultiReader hides the underlying Seeker, so the body cannot be replayed.
	body := io.MultiReader(strings.NewReader("data"))
	_, err := store.Put(context.Background(), "k", body, Meta{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.putCalls)
	assert.Equal(t, apierror.KindStorageTransient, apierror.KindOf(err))
}

func TestRetryStoreDeleteRetries(t *testing.T) {
	inner := &flakyStore{failDeletes: 1, err: Transient(errors.New("flap"))}
	store := fastRetry(inner)

	require.NoError(t, store.Delete(context.Background(), "k"))
	assert.Equal(t, 2, inner.deleteCalls)
}

func TestTimeoutIsTransient(t *testing.T) {
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.True(t, isTransient(Transient(errors.New("x"))))
	assert.False(t, isTransient(errors.New("x")))
}
