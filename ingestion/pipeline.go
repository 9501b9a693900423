package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/splitter"
	"github.com/poiesic/grounder/storage"
)

// DefaultBatchSize is the number of chunk texts sent to the embedder per call.
const DefaultBatchSize = 32

// Pipeline orchestrates the ingestion of documents: splitting into chunks,
// embedding the chunks concurrently, and persisting the results.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	embeddingPool      *ants.Pool
	chunkSize          int
	overlap            int
	batchSize          int
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithChunking overrides the chunk size and overlap used to split documents.
// Defaults are splitter.DefaultChunkSize and splitter.DefaultOverlap.
func WithChunking(chunkSize, overlap int) Option {
	return func(p *Pipeline) error {
		p.chunkSize = chunkSize
		p.overlap = overlap
		return nil
	}
}

// WithBatchSize sets how many chunk texts are embedded per request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           provider.Embedder(),
		embeddingPool:      embeddingPool,
		chunkSize:          splitter.DefaultChunkSize,
		overlap:            splitter.DefaultOverlap,
		batchSize:          DefaultBatchSize,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestDocument splits a document into chunks, embeds them, and stores both
// the document and its chunks. Re-ingesting a document with the same name
// replaces the previous version.
//
// Embedding failures don't abort the ingestion: affected chunks are stored
// without a vector, counted in the result, and repaired later by a reindex.
func (p *Pipeline) IngestDocument(ctx context.Context, name, text string) (*core.IngestResult, error) {
	doc := &core.Document{
		Id:   core.DocumentID(name),
		Name: name,
		Text: text,
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	spans, err := splitter.Split(text, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}

	// Drop the previous version's chunks so re-ingestion never leaves
	// orphaned spans behind.
	removed, err := p.chunkRepository.DeleteChunksByDocument(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		p.logger.Info("replacing previously ingested document", "document", name, "chunksRemoved", removed)
	}

	chunks := make([]*core.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = &core.Chunk{
			Id:          core.ChunkID(doc.Id, span.Start, span.End),
			DocumentId:  doc.Id,
			Text:        span.Text,
			StartOffset: span.Start,
			EndOffset:   span.End,
		}
	}

	p.embedChunks(ctx, chunks)

	doc.ChunkCount = len(chunks)
	if _, err := p.documentRepository.PutDocument(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := p.chunkRepository.UpsertChunks(ctx, chunks...); err != nil {
		return nil, err
	}

	result := &core.IngestResult{ChunksCreated: len(chunks)}
	for _, chunk := range chunks {
		if chunk.Indexed() {
			result.ChunksIndexed++
		} else {
			result.ChunksFailed++
		}
	}

	if result.ChunksFailed > 0 {
		p.logger.Warn("document ingested with embedding failures",
			"document", name,
			"chunksCreated", result.ChunksCreated,
			"chunksFailed", result.ChunksFailed)
	} else {
		p.logger.Info("document ingested",
			"document", name,
			"chunksCreated", result.ChunksCreated)
	}

	return result, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
