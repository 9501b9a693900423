package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text completions from a generation model.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends the prompt to the generation model and returns the
	// produced text. Calls are independent and carry no side effects beyond
	// the network call itself; results are never cached.
	//
	// Failures are classified against the core taxonomy: rate limiting is
	// retried with bounded backoff before being surfaced as
	// core.ErrRateLimited, malformed requests surface core.ErrInvalidRequest,
	// and credential rejections surface core.ErrAuthFailure without any retry.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the identifier of the generation model, used for answer
	// attribution.
	Model() string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
