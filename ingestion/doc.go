// Package ingestion provides pipeline orchestration for processing documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Splitting documents into overlapping chunks
//   - Generating embeddings for chunks in concurrent batches
//   - Persisting documents and chunks to storage
//
// Embedding is performed concurrently using a worker pool to maximize
// throughput. Embedding failures are logged and counted but do not fail the
// ingestion operation; the affected chunks are stored without a vector and
// can be repaired by a later reindex.
package ingestion
