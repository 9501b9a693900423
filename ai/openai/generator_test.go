package openai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/grounder/core"
	"github.com/stretchr/testify/assert"
)

func TestClassifyGenerationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "rate limit by status code",
			err:  errors.New("API returned unexpected status code: 429"),
			want: core.ErrRateLimited,
		},
		{
			name: "rate limit by wording",
			err:  errors.New("Rate limit reached for requests"),
			want: core.ErrRateLimited,
		},
		{
			name: "auth failure by status code",
			err:  errors.New("API returned unexpected status code: 401"),
			want: core.ErrAuthFailure,
		},
		{
			name: "auth failure by wording",
			err:  errors.New("Incorrect API key provided"),
			want: core.ErrAuthFailure,
		},
		{
			name: "invalid request by status code",
			err:  errors.New("API returned unexpected status code: 400"),
			want: core.ErrInvalidRequest,
		},
		{
			name: "invalid request by context length",
			err:  errors.New("this model's maximum context length is 4096 tokens"),
			want: core.ErrInvalidRequest,
		},
		{
			name: "deadline becomes timeout",
			err:  fmt.Errorf("request: %w", context.DeadlineExceeded),
			want: core.ErrTimedOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyGenerationError(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyGenerationError_Unknown(t *testing.T) {
	unknown := errors.New("connection reset by peer")
	got := classifyGenerationError(unknown)

	assert.Equal(t, unknown, got, "unclassified errors pass through unchanged")
	assert.NotErrorIs(t, got, core.ErrRateLimited)
	assert.NotErrorIs(t, got, core.ErrAuthFailure)
}

func TestClassifyEmbeddingError(t *testing.T) {
	outage := errors.New("connection refused")
	assert.ErrorIs(t, classifyEmbeddingError(outage), core.ErrEmbeddingUnavailable)

	deadline := fmt.Errorf("embed: %w", context.DeadlineExceeded)
	assert.ErrorIs(t, classifyEmbeddingError(deadline), core.ErrTimedOut)
}
