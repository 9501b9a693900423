package storage

import (
	"context"

	"github.com/poiesic/grounder/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing ingested documents.
type DocumentRepository interface {
	Repository
	// PutDocument stores a document, replacing any existing document with the
	// same ID. Sets CreatedAt if not already set.
	// Returns the document with timestamps populated.
	PutDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentByName retrieves a document by its name.
	// Returns ErrNotFound if no document with that name exists.
	GetDocumentByName(ctx context.Context, name string) (*core.Document, error)

	// ListDocuments retrieves all documents, ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document and all of its chunks.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}

// ChunkRepository provides operations for managing document chunks and the
// vector index built over them.
type ChunkRepository interface {
	Repository
	// UpsertChunks stores one or more chunks, replacing any existing chunks
	// with the same IDs. Assigns a fresh insertion sequence and sets
	// InsertedAt on chunks that don't carry one yet.
	// Returns the chunks with sequences and timestamps populated.
	UpsertChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunkVectors rewrites the stored vectors of existing chunks,
	// leaving every other field untouched.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunkVectors(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks belonging to a document,
	// ordered by insertion sequence.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes all chunks belonging to a document.
	// Returns the number of chunks removed; deleting chunks of an unknown
	// document is not an error.
	DeleteChunksByDocument(ctx context.Context, documentID core.ID) (int, error)

	// GetChunkBatch retrieves up to limit chunks in key order, starting
	// after the chunk with afterID. Pass afterID 0 to start from the
	// beginning. Returns an empty slice once the corpus is exhausted.
	GetChunkBatch(ctx context.Context, afterID core.ID, limit int) ([]*core.Chunk, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// CountIndexedChunks returns the number of chunks that carry an
	// embedding and therefore participate in similarity search.
	CountIndexedChunks(ctx context.Context) (int, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first); ties keep
	// insertion order. Chunks without an embedding never match.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error)
}
