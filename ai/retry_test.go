package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.Equal(t, ErrInvalidMaxAttempts, err)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errors.New("keep failing")
	}

	err := RetryWithBackoff(ctx, operation, 10, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts, "should stop retrying after cancellation")
}

func TestRetryWithBackoffIf_NonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("fatal error")
	attempts := 0
	operation := func() error {
		attempts++
		return fatal
	}

	err := RetryWithBackoffIf(context.Background(), operation, 5, 10*time.Millisecond,
		func(err error) bool { return !errors.Is(err, fatal) })
	require.Error(t, err)
	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, attempts, "fatal errors must not be retried")
}

func TestRetryWithBackoffIf_RetryableOnly(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return transient
		}
		return fatal
	}

	err := RetryWithBackoffIf(context.Background(), operation, 10, time.Millisecond,
		func(err error) bool { return errors.Is(err, transient) })
	require.Error(t, err)
	assert.Equal(t, fatal, err)
	assert.Equal(t, 3, attempts, "should retry transient errors until a fatal one appears")
}
