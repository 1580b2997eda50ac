package search

import "github.com/poiesic/newsqa/core"

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterVectorSearch(matches []*core.SimilarityMatch)
	VerbatimHit(record *core.PassageRecord)
	AfterDiversityRanking(matches []*core.SimilarityMatch)
	Finish(evidences []core.Evidence)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) AfterEmbedding(_ int)                          {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SimilarityMatch)   {}
func (n *noopMonitor) VerbatimHit(_ *core.PassageRecord)             {}
func (n *noopMonitor) AfterDiversityRanking(_ []*core.SimilarityMatch) {}
func (n *noopMonitor) Finish(_ []core.Evidence)                      {}
