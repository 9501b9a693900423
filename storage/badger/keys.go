package badger

import (
	"encoding/binary"

	"github.com/poiesic/grounder/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec"
	documentNamePrefix   = "docna"
	chunkRecordPrefix    = "chkrec"
	chunkDocumentPrefix  = "chkdoc"
	chunkSeqName         = "chkseq"
)

// makeDocumentKey generates a key for a document by ID.
// IDs are encoded BigEndian so lexicographic key order matches ID order.
func makeDocumentKey(id core.ID) []byte {
	prefix := documentRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// documentKeyPrefix returns the prefix shared by all document record keys.
func documentKeyPrefix() []byte {
	return []byte(documentRecordPrefix + ":")
}

// makeDocumentNameKey generates a key for the document name index.
// Format: prefix:name
func makeDocumentNameKey(name string) []byte {
	prefix := documentNamePrefix + ":"
	buf := make([]byte, len(prefix)+len(name))
	offset := copy(buf, prefix)
	copy(buf[offset:], name)
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// chunkKeyPrefix returns the prefix shared by all chunk record keys.
func chunkKeyPrefix() []byte {
	return []byte(chunkRecordPrefix + ":")
}

// makeChunkDocumentKey generates a composite key for the document index.
// Format: prefix:documentID:chunkID
func makeChunkDocumentKey(documentID, chunkID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkDocumentKey generates a partial key for listing the chunks
// of one document.
// Format: prefix:documentID
func makePartialChunkDocumentKey(documentID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
