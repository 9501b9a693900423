package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/storage"
)

// DefaultTopK is the number of passages retrieved per query when the caller
// doesn't ask for a specific count.
const DefaultTopK = 5

// Retriever finds the chunks most similar to a query by embedding the query
// and searching the vector index.
type Retriever struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	minSimilarity   float32
	logger          *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor below which chunks are not
// returned. The default of 0 admits every non-negative match and leaves
// filtering to the prompt budget.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(r *Retriever) error {
		if minSimilarity < -1 || minSimilarity > 1 {
			return fmt.Errorf("%w: minimum similarity %f outside [-1, 1]", core.ErrInvalidInput, minSimilarity)
		}
		r.minSimilarity = minSimilarity
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve finds the chunks most similar to the query.
// Returns up to topK results, ranked by similarity score.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]*core.ScoredChunk, error) {
	return r.RetrieveWithMonitor(ctx, query, topK, nil)
}

// RetrieveWithMonitor finds the chunks most similar to the query with
// monitoring. The monitor receives callbacks at each stage of retrieval.
// Returns up to topK results, ranked by similarity score; an empty index
// yields an empty result, not an error.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, monitor RetrievalMonitor) ([]*core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK %d must be positive", core.ErrInvalidInput, topK)
	}

	monitor.Start(query)

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	// Similarity scores assume unit vectors on both sides.
	embedding = core.Normalize(embedding)
	monitor.AfterQueryEmbedding(len(embedding))

	matches, err := r.chunkRepository.FindSimilar(ctx, embedding, r.minSimilarity, topK)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return nil, fmt.Errorf("%w: %s", core.ErrIndexUnavailable, err)
	}

	if matches == nil {
		matches = []*core.ScoredChunk{}
	}
	monitor.Finish(matches)

	return matches, nil
}
