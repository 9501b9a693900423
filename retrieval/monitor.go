package retrieval

import "github.com/poiesic/grounder/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type RetrievalMonitor interface {
	Start(query string)
	AfterQueryEmbedding(dimensions int)
	Finish(results []*core.ScoredChunk)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)       {}
func (n *noopMonitor) Finish(_ []*core.ScoredChunk)    {}
