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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/grounder/ai"
	"github.com/poiesic/grounder/core"
	"github.com/poiesic/grounder/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MissingOnly restricts reindexing to chunks that have no embedding yet,
	// repairing failed ingests without touching healthy vectors.
	MissingOnly bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer orchestrates the re-embedding of stored chunks.
type Reindexer struct {
	repo      storage.ChunkRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ChunkIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewChunkIterator(repo, config.BatchSize)

	return &Reindexer{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reindexing operation.
// All stored chunks are re-embedded with the configured embedder, or only
// the chunks without an embedding when MissingOnly is set.
// Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) (int, error) {
	total, err := r.repo.CountChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}

	if r.config.MissingOnly {
		indexed, err := r.repo.CountIndexedChunks(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count indexed chunks: %w", err)
		}
		total -= indexed
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "Nothing to reindex (0 chunks)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	reporter := newProgressReporter(r.progress, total, r.config.ReportInterval)

	processed := 0

	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		if r.config.MissingOnly {
			chunks = filterUnindexed(chunks)
		}
		if len(chunks) == 0 {
			return nil
		}

		if err := r.processor.Process(ctx, chunks); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(chunks)
		reporter.BatchDone(len(chunks))

		return nil
	})

	if err != nil {
		return processed, err
	}

	elapsed := reporter.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return processed, nil
}

// filterUnindexed keeps only the chunks that have no embedding yet.
func filterUnindexed(chunks []*core.Chunk) []*core.Chunk {
	var unindexed []*core.Chunk
	for _, chunk := range chunks {
		if !chunk.Indexed() {
			unindexed = append(unindexed, chunk)
		}
	}
	return unindexed
}
