package badger

import (
	"context"
	"testing"

	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertChunks_AssignsSeqAndTimestamp(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	docID := core.DocumentID("seq.txt")
	chunks := []*core.Chunk{
		{Id: core.ChunkID(docID, 0, 5), DocumentId: docID, Text: "one", EndOffset: 5},
		{Id: core.ChunkID(docID, 5, 10), DocumentId: docID, Text: "two", StartOffset: 5, EndOffset: 10},
	}

	added, err := chunkRepo.UpsertChunks(ctx, chunks...)
	require.NoError(t, err)
	require.Len(t, added, 2)

	assert.NotZero(t, added[0].Seq)
	assert.NotZero(t, added[1].Seq)
	assert.Greater(t, added[1].Seq, added[0].Seq)
	assert.False(t, added[0].InsertedAt.IsZero())
}

func TestUpsertChunks_Idempotent(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	docID := core.DocumentID("idem.txt")
	chunk := &core.Chunk{
		Id:         core.ChunkID(docID, 0, 5),
		DocumentId: docID,
		Text:       "same span",
		EndOffset:  5,
		Vector:     []float32{1, 0},
	}

	_, err := chunkRepo.UpsertChunks(ctx, chunk)
	require.NoError(t, err)

	// Same content-derived ID replaces rather than duplicates.
	again := &core.Chunk{
		Id:         core.ChunkID(docID, 0, 5),
		DocumentId: docID,
		Text:       "same span",
		EndOffset:  5,
		Vector:     []float32{0, 1},
	}
	_, err = chunkRepo.UpsertChunks(ctx, again)
	require.NoError(t, err)

	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := chunkRepo.GetChunk(ctx, chunk.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, got.Vector)
}

func TestGetChunk_NotFound(t *testing.T) {
	_, chunkRepo := newTestRepos(t)

	_, err := chunkRepo.GetChunk(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetChunksByDocument_OrderedBySeq(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	docID := core.DocumentID("ordered.txt")
	var chunks []*core.Chunk
	for i := 0; i < 6; i++ {
		chunks = append(chunks, &core.Chunk{
			Id:          core.ChunkID(docID, i*10, i*10+10),
			DocumentId:  docID,
			Text:        "chunk",
			StartOffset: i * 10,
			EndOffset:   i*10 + 10,
		})
	}
	_, err := chunkRepo.UpsertChunks(ctx, chunks...)
	require.NoError(t, err)

	got, err := chunkRepo.GetChunksByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 6)

	for i := 0; i < len(got)-1; i++ {
		assert.Less(t, got[i].Seq, got[i+1].Seq)
	}
	// Seq order must match offset order for a single ingest.
	for i := 0; i < len(got)-1; i++ {
		assert.Less(t, got[i].StartOffset, got[i+1].StartOffset)
	}
}

func TestGetChunksByDocument_Empty(t *testing.T) {
	_, chunkRepo := newTestRepos(t)

	got, err := chunkRepo.GetChunksByDocument(context.Background(), core.ID(7))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateChunkVectors(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	docID := core.DocumentID("vec.txt")
	chunk := &core.Chunk{
		Id:         core.ChunkID(docID, 0, 5),
		DocumentId: docID,
		Text:       "needs embedding",
		EndOffset:  5,
	}
	_, err := chunkRepo.UpsertChunks(ctx, chunk)
	require.NoError(t, err)

	indexed, err := chunkRepo.CountIndexedChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, indexed)

	chunk.Vector = []float32{0.6, 0.8}
	err = chunkRepo.UpdateChunkVectors(ctx, chunk)
	require.NoError(t, err)

	got, err := chunkRepo.GetChunk(ctx, chunk.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, got.Vector)
	assert.Equal(t, "needs embedding", got.Text)

	indexed, err = chunkRepo.CountIndexedChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, indexed)
}

func TestUpdateChunkVectors_NotFound(t *testing.T) {
	_, chunkRepo := newTestRepos(t)

	err := chunkRepo.UpdateChunkVectors(context.Background(), &core.Chunk{Id: 99, Vector: []float32{1}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteChunksByDocument(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	docID := core.DocumentID("del.txt")
	chunks := []*core.Chunk{
		{Id: core.ChunkID(docID, 0, 5), DocumentId: docID, Text: "a", EndOffset: 5},
		{Id: core.ChunkID(docID, 5, 10), DocumentId: docID, Text: "b", StartOffset: 5, EndOffset: 10},
	}
	_, err := chunkRepo.UpsertChunks(ctx, chunks...)
	require.NoError(t, err)

	deleted, err := chunkRepo.DeleteChunksByDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteChunksByDocument_UnknownDocument(t *testing.T) {
	_, chunkRepo := newTestRepos(t)

	deleted, err := chunkRepo.DeleteChunksByDocument(context.Background(), core.ID(404))
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestGetChunkBatch_CoversAllChunks(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	docID := core.DocumentID("batch.txt")
	want := make(map[core.ID]bool)
	var chunks []*core.Chunk
	for i := 0; i < 25; i++ {
		id := core.ChunkID(docID, i*10, i*10+10)
		want[id] = true
		chunks = append(chunks, &core.Chunk{
			Id:          id,
			DocumentId:  docID,
			Text:        "chunk",
			StartOffset: i * 10,
			EndOffset:   i*10 + 10,
		})
	}
	_, err := chunkRepo.UpsertChunks(ctx, chunks...)
	require.NoError(t, err)

	seen := make(map[core.ID]bool)
	var cursor core.ID
	for {
		batch, err := chunkRepo.GetChunkBatch(ctx, cursor, 10)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		assert.LessOrEqual(t, len(batch), 10)
		for _, chunk := range batch {
			assert.False(t, seen[chunk.Id], "chunk %d visited twice", chunk.Id)
			seen[chunk.Id] = true
		}
		cursor = batch[len(batch)-1].Id
	}

	assert.Equal(t, len(want), len(seen))
	for id := range want {
		assert.True(t, seen[id])
	}
}

func TestCountChunks(t *testing.T) {
	_, chunkRepo := newTestRepos(t)
	ctx := context.Background()

	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	docID := core.DocumentID("count.txt")
	_, err = chunkRepo.UpsertChunks(ctx,
		&core.Chunk{Id: core.ChunkID(docID, 0, 5), DocumentId: docID, Text: "a", EndOffset: 5, Vector: []float32{1}},
		&core.Chunk{Id: core.ChunkID(docID, 5, 10), DocumentId: docID, Text: "b", StartOffset: 5, EndOffset: 10},
	)
	require.NoError(t, err)

	count, err = chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	indexed, err := chunkRepo.CountIndexedChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, indexed)
}
