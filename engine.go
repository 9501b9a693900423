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


package grounder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/ai/openai"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/ingestion"
	"github.com/poiesic/grounder/prompt"
	"github.com/poiesic/grounder/reindex"
	"github.com/poiesic/grounder/retrieval"
	"github.com/poiesic/grounder/storage"
	"github.com/poiesic/grounder/storage/badger"
)

// Engine ties the pipeline together: ingestion, retrieval, prompt assembly,
// and generation over a single document corpus.
type Engine struct {
	backend        *badger.Backend
	docRepo        storage.DocumentRepository
	chunkRepo      storage.ChunkRepository
	provider       ai.AIProvider
	retriever      *retrieval.Retriever
	assembler      *prompt.Assembler
	pipeline       *ingestion.Pipeline
	topK           int
	requestTimeout time.Duration
	logger         *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig       *ai.Config
	provider       ai.AIProvider
	inMemory       bool
	topK           int
	minSimilarity  float32
	maxTokens      int
	chunkSize      int
	overlap        int
	requestTimeout time.Duration
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider overrides the AI provider entirely. Useful for tests.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory instead of on disk.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithTopK sets how many passages are retrieved per grounded query.
// Default is retrieval.DefaultTopK.
func WithTopK(topK int) EngineOption {
	return func(o *engineOptions) {
		o.topK = topK
	}
}

// WithMinSimilarity sets the retrieval similarity floor.
func WithMinSimilarity(minSimilarity float32) EngineOption {
	return func(o *engineOptions) {
		o.minSimilarity = minSimilarity
	}
}

// WithMaxTokens sets the prompt token budget.
// Default is prompt.DefaultMaxTokens.
func WithMaxTokens(maxTokens int) EngineOption {
	return func(o *engineOptions) {
		o.maxTokens = maxTokens
	}
}

// WithChunking overrides the chunk size and overlap used during ingestion.
func WithChunking(chunkSize, overlap int) EngineOption {
	return func(o *engineOptions) {
		o.chunkSize = chunkSize
		o.overlap = overlap
	}
}

// WithRequestTimeout bounds each Answer and IngestDocument call. Exceeding
// the deadline surfaces as core.ErrTimedOut. Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.requestTimeout = timeout
	}
}

// NewEngine opens the storage backend at filePath and wires up the full
// pipeline.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		topK:     retrieval.DefaultTopK,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo := badger.NewDocumentRepository(backend)

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	closeAll := func() {
		provider.Close()
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	}

	retriever, err := retrieval.NewRetriever(chunkRepo, provider,
		retrieval.WithMinSimilarity(options.minSimilarity))
	if err != nil {
		closeAll()
		return nil, err
	}

	assemblerOpts := []prompt.Option{}
	if options.maxTokens > 0 {
		assemblerOpts = append(assemblerOpts, prompt.WithMaxTokens(options.maxTokens))
	}
	assembler, err := prompt.NewAssembler(assemblerOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{}
	if options.chunkSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithChunking(options.chunkSize, options.overlap))
	}
	pipeline, err := ingestion.NewPipeline(docRepo, chunkRepo, provider, pipelineOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	return &Engine{
		backend:        backend,
		docRepo:        docRepo,
		chunkRepo:      chunkRepo,
		provider:       provider,
		retriever:      retriever,
		assembler:      assembler,
		pipeline:       pipeline,
		topK:           options.topK,
		requestTimeout: options.requestTimeout,
		logger:         slog.Default(),
	}, nil
}

// IngestDocument splits, embeds, and stores a document under the given name.
// Re-ingesting the same name replaces the previous version.
func (e *Engine) IngestDocument(ctx context.Context, name, text string) (*core.IngestResult, error) {
	ctx, cancel := e.boundedContext(ctx)
	defer cancel()

	result, err := e.pipeline.IngestDocument(ctx, name, text)
	return result, e.mapTimeout(err)
}

// Answer runs a query through the pipeline.
//
// In RAG mode the query is embedded, similar passages are retrieved and
// assembled into a grounded prompt, and the answer carries the names of the
// documents whose passages actually appeared in that prompt. In direct mode
// the query goes straight to the model and the answer carries no sources.
func (e *Engine) Answer(ctx context.Context, query string, mode core.AnswerMode) (*core.Answer, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	if err := core.ValidateAnswerMode(mode); err != nil {
		return nil, err
	}

	ctx, cancel := e.boundedContext(ctx)
	defer cancel()

	generator := e.provider.Generator()

	if mode == core.ModeDirect {
		text, err := generator.Generate(ctx, query)
		if err != nil {
			return nil, e.mapTimeout(err)
		}
		return &core.Answer{
			Text:    text,
			Sources: []string{},
			Mode:    core.ModeDirect,
			Model:   generator.Model(),
		}, nil
	}

	matches, err := e.retriever.Retrieve(ctx, query, e.topK)
	if err != nil {
		return nil, e.mapTimeout(err)
	}

	assembled, err := e.assembler.Assemble(query, matches)
	if err != nil {
		return nil, err
	}

	text, err := generator.Generate(ctx, assembled.Text)
	if err != nil {
		return nil, e.mapTimeout(err)
	}

	return &core.Answer{
		Text:    text,
		Sources: sourceTexts(assembled.Included),
		Mode:    core.ModeRAG,
		Model:   generator.Model(),
	}, nil
}

// DeleteDocument removes a document and its chunks by name.
func (e *Engine) DeleteDocument(ctx context.Context, name string) error {
	doc, err := e.docRepo.GetDocumentByName(ctx, name)
	if err != nil {
		return err
	}
	return e.docRepo.DeleteDocument(ctx, doc.Id)
}

// ListDocuments returns all ingested documents.
func (e *Engine) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	return e.docRepo.ListDocuments(ctx)
}

// Stats reports corpus size. IndexSize counts only embedded chunks, so it
// trails ChunkCount while embedding failures remain unrepaired.
func (e *Engine) Stats(ctx context.Context) (*core.Stats, error) {
	documents, err := e.docRepo.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := e.chunkRepo.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	indexed, err := e.chunkRepo.CountIndexedChunks(ctx)
	if err != nil {
		return nil, err
	}

	return &core.Stats{
		DocumentCount: documents,
		ChunkCount:    chunks,
		IndexSize:     indexed,
	}, nil
}

// Reindex re-embeds stored chunks, or only the ones missing an embedding
// when missingOnly is set. Progress is written to progress.
func (e *Engine) Reindex(ctx context.Context, missingOnly bool, progress io.Writer) (int, error) {
	config := reindex.DefaultConfig()
	config.MissingOnly = missingOnly

	reindexer := reindex.NewReindexer(e.chunkRepo, e.provider.Embedder(), config, progress)
	return reindexer.Run(ctx)
}

// DocumentRepository exposes the underlying document repository.
func (e *Engine) DocumentRepository() storage.DocumentRepository {
	return e.docRepo
}

// ChunkRepository exposes the underlying chunk repository.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// Close releases the pipeline, the AI provider, the repositories, and the
// storage backend.
func (e *Engine) Close() error {
	e.pipeline.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := e.docRepo.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// sourceTexts returns the passage texts that made it into the prompt, in
// prompt order. Attribution never reaches past what the model actually saw.
func sourceTexts(included []*core.Chunk) []string {
	sources := make([]string, len(included))
	for i, chunk := range included {
		sources[i] = chunk.Text
	}
	return sources
}

func (e *Engine) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.requestTimeout > 0 {
		return context.WithTimeout(ctx, e.requestTimeout)
	}
	return context.WithCancel(ctx)
}

func (e *Engine) mapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", core.ErrTimedOut, err)
	}
	return err
}
