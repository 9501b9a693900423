package ingestion

import (
	"context"
	"sync"

	"github.com/poiesic/grounder/core"
)

// embedChunks embeds the given chunks in batches on the worker pool, writing
// normalized vectors back into the chunks. Chunks whose embedding failed keep
// an empty vector.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk) {
	var wg sync.WaitGroup

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := p.embeddingPool.Submit(func() {
			defer wg.Done()
			p.embedBatch(ctx, batch)
		})
		if submitErr != nil {
			// Pool rejected the task (released or overloaded); embed inline
			// so the batch isn't silently dropped.
			p.logger.Warn("embedding pool rejected batch, running inline", "err", submitErr)
			p.embedBatch(ctx, batch)
			wg.Done()
		}
	}

	wg.Wait()
}

// embedBatch embeds one batch of chunks. The batch call is retried once; if
// it still fails, each chunk is embedded individually so one poisoned text
// can't sink the whole batch.
func (p *Pipeline) embedBatch(ctx context.Context, batch []*core.Chunk) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Warn("batch embedding failed, retrying once", "batchSize", len(texts), "err", err)
		vectors, err = p.embedder.EmbedTexts(ctx, texts)
	}

	if err == nil && len(vectors) == len(batch) {
		for i, vector := range vectors {
			batch[i].Vector = core.Normalize(vector)
		}
		return
	}
	if err != nil {
		p.logger.Warn("batch embedding failed twice, falling back to per-chunk embedding",
			"batchSize", len(texts), "err", err)
	} else {
		p.logger.Warn("embedding result count mismatch, falling back to per-chunk embedding",
			"expected", len(batch), "received", len(vectors))
	}

	for _, chunk := range batch {
		vector, itemErr := p.embedder.EmbedText(ctx, chunk.Text)
		if itemErr != nil {
			p.logger.Error("chunk embedding failed, storing without vector",
				"chunk", chunk.Id, "err", itemErr)
			continue
		}
		chunk.Vector = core.Normalize(vector)
	}
}
