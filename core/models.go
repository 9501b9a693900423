package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from entity content so identical content maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentID derives a document's ID from its name. Re-ingesting a document
// with the same name therefore replaces the previous version instead of
// creating a duplicate.
func DocumentID(name string) ID {
	return IDFromContent("doc:" + name)
}

// ChunkID derives a chunk's ID from its parent document and character span.
// Upserting the same span twice replaces the stored chunk.
func ChunkID(documentID ID, start, end int) ID {
	return IDFromContent(fmt.Sprintf("chunk:%d:%d:%d", documentID, start, end))
}

// Document is a raw text document ingested into the corpus.
// Documents are immutable once ingested and removed only by explicit deletion,
// which cascades to their chunks.
type Document struct {
	Id         ID
	Name       string
	Text       string
	CreatedAt  time.Time
	ChunkCount int
}

// Chunk is a bounded span of a document used as the unit of retrieval.
// Chunks from one document may overlap by a fixed window. A chunk is immutable
// after creation except for its Vector, which is populated when the chunk is
// embedded (possibly later, if embedding failed at ingest time).
type Chunk struct {
	Id          ID
	DocumentId  ID
	Seq         uint64 // insertion sequence, used for stable ranking tie-breaks
	Text        string
	StartOffset int
	EndOffset   int
	Vector      []float32
	InsertedAt  time.Time
}

// Indexed reports whether the chunk has an embedding and therefore
// participates in similarity search.
func (c *Chunk) Indexed() bool {
	return len(c.Vector) > 0
}

// ScoredChunk is a chunk paired with its similarity score for a query.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// AnswerMode selects between grounded and direct generation.
type AnswerMode int

const (
	// ModeRAG grounds the answer in retrieved passages.
	ModeRAG AnswerMode = iota + 1
	// ModeDirect sends the query to the model without retrieval.
	ModeDirect
)

// String returns the wire representation of the mode.
func (m AnswerMode) String() string {
	switch m {
	case ModeRAG:
		return "RAG"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("AnswerMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler so the mode serializes as
// "RAG" or "direct" in JSON payloads.
func (m AnswerMode) MarshalText() ([]byte, error) {
	if err := ValidateAnswerMode(m); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// Answer is the result of a generation request.
// Sources contain exactly the passages that were present in the prompt sent to
// the generation model; a direct answer carries no sources.
type Answer struct {
	Text    string     `json:"answer"`
	Sources []string   `json:"sources"`
	Mode    AnswerMode `json:"mode"`
	Model   string     `json:"model"`
}

// Stats reports the size of the corpus. IndexSize counts only chunks that
// currently have an embedding; it trails ChunkCount when embeddings failed and
// have not been repaired yet.
type Stats struct {
	DocumentCount int `json:"documentCount"`
	ChunkCount    int `json:"chunkCount"`
	IndexSize     int `json:"indexSize"`
}

// IngestResult reports per-batch ingestion counts. A partially failed
// ingestion keeps the chunks that succeeded; failures are counted, not rolled
// back.
type IngestResult struct {
	ChunksCreated int `json:"chunksCreated"`
	ChunksIndexed int `json:"chunksIndexed"`
	ChunksFailed  int `json:"chunksFailed"`
}
