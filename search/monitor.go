package search

import "github.com/poiesic/warroom/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during search.
type RetrievalMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterVectorSearch(results []*core.RetrievalResult)
	Finish(results []*core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterEmbedding(_ []float32)                 {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.RetrievalResult) {}
func (n *noopMonitor) Finish(_ []*core.RetrievalResult)           {}
