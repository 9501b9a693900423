// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	model       string
	maxTokens   int
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		model:       config.GenerationModel,
		maxTokens:   config.MaxTokens,
		maxAttempts: config.MaxAttempts,
		retryDelay:  config.RetryBaseDelay,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Model returns the generation model identifier.
func (g *Generator) Model() string {
	return g.model
}

// Generate sends the prompt to the generation model and returns the produced
// text. Rate-limited calls are retried with exponential backoff up to the
// configured attempt budget; auth failures and invalid requests are surfaced
// immediately.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	var text string
	err := ai.RetryWithBackoffIf(ctx, func() error {
		response, err := g.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0),
			llms.WithMaxTokens(g.maxTokens),
		)
		if err != nil {
			g.logger.Error("generation call failed", "model", g.model, "err", err)
			return classifyGenerationError(err)
		}

		if len(response.Choices) < 1 {
			return fmt.Errorf("%w: model returned no choices", core.ErrInvalidRequest)
		}

		text = response.Choices[0].Content
		return nil
	}, g.maxAttempts, g.retryDelay, func(err error) bool {
		return errors.Is(err, core.ErrRateLimited)
	})
	if err != nil {
		return "", err
	}

	return text, nil
}

// classifyGenerationError maps a provider failure onto the core taxonomy.
// The OpenAI-compatible client flattens HTTP failures into error strings, so
// classification matches on status codes and the provider's wording.
func classifyGenerationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrTimedOut, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %v", core.ErrRateLimited, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key"):
		return fmt.Errorf("%w: %v", core.ErrAuthFailure, err)
	case strings.Contains(msg, "400") || strings.Contains(msg, "context length") ||
		strings.Contains(msg, "maximum context"):
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	default:
		return err
	}
}
