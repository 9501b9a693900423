// Package reindex provides functionality for re-embedding stored chunks
// with new or updated embedding models.
//
// This package supports batch processing of chunks, progress tracking,
// retry logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search. A missing-only mode repairs
// chunks whose embedding failed at ingest time without touching healthy
// vectors.
package reindex
