// internal/admission/lock/lock_test.go
package lock

import (
	"context"
	"testing"
	"time"

	stderrors "admission-workers/internal/common/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenPattern = `[a-f0-9-]{36}`

func TestAcquire(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := New(client, 5*time.Minute)

	mock.Regexp().ExpectSetNX("admission:meritlist:lock:camp-1", tokenPattern, 5*time.Minute).
		SetVal(true)

	token, err := l.Acquire(context.Background(), "camp-1")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_HeldLockIsRejected(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := New(client, 5*time.Minute)

	mock.Regexp().ExpectSetNX("admission:meritlist:lock:camp-1", tokenPattern, 5*time.Minute).
		SetVal(false)

	_, err := l.Acquire(context.Background(), "camp-1")

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeRecomputationInProgress, stdErr.Code)
}

func TestAcquire_RedisFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := New(client, 5*time.Minute)

	mock.Regexp().ExpectSetNX("admission:meritlist:lock:camp-1", tokenPattern, 5*time.Minute).
		SetErr(assert.AnError)

	_, err := l.Acquire(context.Background(), "camp-1")

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrorCode("EXTERNAL_SERVICE_ERROR"), stdErr.Code)
}

func TestRelease_DeletesOwnToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := New(client, 5*time.Minute)

	mock.ExpectGet("admission:meritlist:lock:camp-1").SetVal("my-token")
	mock.ExpectDel("admission:meritlist:lock:camp-1").SetVal(1)

	err := l.Release(context.Background(), "camp-1", "my-token")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_SkipsForeignToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := New(client, 5*time.Minute)

	// TTL expired and another run re-acquired; the old holder must not
	// delete the new holder's lock.
	mock.ExpectGet("admission:meritlist:lock:camp-1").SetVal("someone-elses-token")

	err := l.Release(context.Background(), "camp-1", "my-token")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_AlreadyExpired(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := New(client, 5*time.Minute)

	mock.ExpectGet("admission:meritlist:lock:camp-1").RedisNil()

	err := l.Release(context.Background(), "camp-1", "my-token")

	assert.NoError(t, err)
}
