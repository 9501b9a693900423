package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	seq, err := backend.GetSequence(chunkSeqName)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the insertion sequence.
func (r *ChunkRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// UpsertChunks stores one or more chunks, replacing chunks with the same IDs.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Seq == 0 {
				next, err := r.seq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if next == 0 {
					next, err = r.seq.Next()
					if err != nil {
						return err
					}
				}
				chunk.Seq = next
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			key := makeChunkKey(chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Document index
			docKey := makeChunkDocumentKey(chunk.DocumentId, chunk.Id)
			if err := tx.Set(docKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// UpdateChunkVectors rewrites the stored vectors of existing chunks.
func (r *ChunkRepository) UpdateChunkVectors(ctx context.Context, chunks ...*core.Chunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)
			stored, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if stored == nil {
				return storage.ErrNotFound
			}

			stored.Vector = chunk.Vector
			if err := tx.Set(key, storage.MarshalChunk(stored)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByDocument retrieves all chunks of a document, ordered by
// insertion sequence.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkDocumentKey(documentID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, startKey) {
				break
			}

			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// The document index is ordered by chunk ID, which is a content hash.
	slices.SortFunc(results, func(a, b *core.Chunk) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})

	return results, nil
}

// DeleteChunksByDocument removes all chunks of a document.
func (r *ChunkRepository) DeleteChunksByDocument(ctx context.Context, documentID core.ID) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		deleted, err = deleteChunksOfDocument(tx, documentID)
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return deleted, err
}

// GetChunkBatch retrieves up to limit chunks in key order, starting after
// afterID. Pass afterID 0 to start from the beginning.
func (r *ChunkRepository) GetChunkBatch(ctx context.Context, afterID core.ID, limit int) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := chunkKeyPrefix()
		if afterID != 0 {
			startKey = makeChunkKey(afterID)
		}

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			// The seek lands on the cursor chunk itself; resume after it.
			if afterID != 0 && bytes.Equal(iter.Item().Key(), makeChunkKey(afterID)) {
				continue
			}

			var chunk *core.Chunk
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// CountIndexedChunks returns the number of chunks that carry an embedding.
func (r *ChunkRepository) CountIndexedChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var indexed bool
			if err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				indexed = chunk.Indexed()
				return nil
			}); err != nil {
				return err
			}
			if indexed {
				count++
			}
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// readChunk reads a chunk from the transaction.
// Returns nil without error when the key doesn't exist.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}

// deleteChunksOfDocument removes all chunk records and index entries of a
// document inside an open write transaction. Shared with the document
// repository's delete cascade.
func deleteChunksOfDocument(tx *badger.Txn, documentID core.ID) (int, error) {
	startKey := makePartialChunkDocumentKey(documentID)

	// Collect first; deleting while iterating invalidates the iterator.
	var indexKeys [][]byte
	var chunkIDs []core.ID

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, startKey) {
			break
		}

		var chunkID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			chunkID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			iter.Close()
			return 0, err
		}

		indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
		chunkIDs = append(chunkIDs, chunkID)
	}
	iter.Close()

	for i, chunkID := range chunkIDs {
		if err := tx.Delete(makeChunkKey(chunkID)); err != nil {
			return 0, err
		}
		if err := tx.Delete(indexKeys[i]); err != nil {
			return 0, err
		}
	}

	return len(chunkIDs), nil
}
