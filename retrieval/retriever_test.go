package retrieval

import (
	"context"
	"testing"

	"github.com/poiesic/grounder/ai/mock"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/storage"
	storagebadger "github.com/poiesic/grounder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunkRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	docRepo, chunkRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})
	return chunkRepo
}

func TestNewRetriever_Validation(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)
	provider := mock.NewMockProvider()

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewRetriever(nil, provider)
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewRetriever(chunkRepo, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("valid", func(t *testing.T) {
		r, err := NewRetriever(chunkRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)
	retriever, err := NewRetriever(chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := retriever.Retrieve(context.Background(), "anything", DefaultTopK)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_RanksBySimilarity(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)
	ctx := context.Background()

	docID := core.DocumentID("langs.txt")
	chunks := []*core.Chunk{
		{
			Id:         core.ChunkID(docID, 0, 10),
			DocumentId: docID,
			Text:       "exact match",
			EndOffset:  10,
			Vector:     []float32{1.0, 0.0},
		},
		{
			Id:          core.ChunkID(docID, 10, 20),
			DocumentId:  docID,
			Text:        "close match",
			StartOffset: 10,
			EndOffset:   20,
			Vector:      []float32{0.8, 0.6},
		},
		{
			Id:          core.ChunkID(docID, 20, 30),
			DocumentId:  docID,
			Text:        "unrelated",
			StartOffset: 20,
			EndOffset:   30,
			Vector:      []float32{0.0, 1.0},
		},
	}
	_, err := chunkRepo.UpsertChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	retriever, err := NewRetriever(chunkRepo, provider)
	require.NoError(t, err)

	results, err := retriever.Retrieve(ctx, "which language?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact match", results[0].Chunk.Text)
	assert.Equal(t, "close match", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRetrieve_MinSimilarityFilters(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)
	ctx := context.Background()

	docID := core.DocumentID("filter.txt")
	_, err := chunkRepo.UpsertChunks(ctx,
		&core.Chunk{Id: core.ChunkID(docID, 0, 10), DocumentId: docID, Text: "high", EndOffset: 10, Vector: []float32{1.0, 0.0}},
		&core.Chunk{Id: core.ChunkID(docID, 10, 20), DocumentId: docID, Text: "low", StartOffset: 10, EndOffset: 20, Vector: []float32{0.0, 1.0}},
	)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	retriever, err := NewRetriever(chunkRepo, provider, WithMinSimilarity(0.5))
	require.NoError(t, err)

	results, err := retriever.Retrieve(ctx, "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "high", results[0].Chunk.Text)
}

func TestRetrieve_InvalidInput(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)
	retriever, err := NewRetriever(chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		_, err := retriever.Retrieve(ctx, "", 5)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("whitespace query", func(t *testing.T) {
		_, err := retriever.Retrieve(ctx, "   ", 5)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		_, err := retriever.Retrieve(ctx, "query", 0)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, core.ErrEmbeddingUnavailable
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	retriever, err := NewRetriever(chunkRepo, provider)
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "query", 5)
	assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
}

func TestWithMinSimilarity_OutOfRange(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)

	_, err := NewRetriever(chunkRepo, mock.NewMockProvider(), WithMinSimilarity(1.5))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

// recordingMonitor captures retrieval stages for assertions.
type recordingMonitor struct {
	started    string
	dimensions int
	finished   []*core.ScoredChunk
}

func (m *recordingMonitor) Start(query string)                  { m.started = query }
func (m *recordingMonitor) AfterQueryEmbedding(dimensions int)  { m.dimensions = dimensions }
func (m *recordingMonitor) Finish(results []*core.ScoredChunk)  { m.finished = results }

func TestRetrieveWithMonitor(t *testing.T) {
	chunkRepo := newTestChunkRepo(t)
	ctx := context.Background()

	docID := core.DocumentID("mon.txt")
	_, err := chunkRepo.UpsertChunks(ctx, &core.Chunk{
		Id:         core.ChunkID(docID, 0, 10),
		DocumentId: docID,
		Text:       "monitored",
		EndOffset:  10,
		Vector:     []float32{1.0, 0.0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	retriever, err := NewRetriever(chunkRepo, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := retriever.RetrieveWithMonitor(ctx, "watched query", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, "watched query", monitor.started)
	assert.Equal(t, 2, monitor.dimensions)
	assert.Equal(t, results, monitor.finished)
}
