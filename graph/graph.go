// Package graph runs the query-orchestration state machine: classify a
// question, optionally refine it for retrieval, rank corpus passages, and
// synthesize a grounded answer. Every node is fail-soft; a run always
// terminates and always appends exactly one assistant message.
package graph

import (
	"context"

	"law-agent/search"
	"law-agent/web/types"

	"go.uber.org/zap"
)

// Gateway is the opaque language-model collaborator.
type Gateway interface {
	Chat(ctx context.Context, messages []types.AgentMessage) (string, error)
	ChatStream(ctx context.Context, messages []types.AgentMessage) (<-chan string, error)
}

// Embedder maps query text into the corpus embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher ranks the corpus against a query vector.
type Searcher interface {
	Search(query []float32, k int) []search.ScoredPassage
}

// Sink receives answer fragments in order during a streaming run. A sink
// error stops forwarding but not the run itself.
type Sink func(fragment string) error

type nodeID int

const (
	nodeClassify nodeID = iota
	nodeDirectAnswer
	nodeRefineQuery
	nodeSemanticSearch
	nodeSynthesize
	nodeEnd
)

type Graph struct {
	gateway  Gateway
	embedder Embedder
	engine   Searcher
	topK     int
	logger   *zap.Logger
}

func New(gateway Gateway, embedder Embedder, engine Searcher, topK int, logger *zap.Logger) *Graph {
	if topK <= 0 {
		topK = 3
	}
	return &Graph{
		gateway:  gateway,
		embedder: embedder,
		engine:   engine,
		topK:     topK,
		logger:   logger,
	}
}

// Run executes the graph to a terminal node, mutating st in place.
func (g *Graph) Run(ctx context.Context, st *State) {
	g.run(ctx, st, nil)
}

// RunStream executes the graph, pushing answer fragments of the terminal
// node's message to sink as they are produced.
func (g *Graph) RunStream(ctx context.Context, st *State, sink Sink) {
	g.run(ctx, st, sink)
}

func (g *Graph) run(ctx context.Context, st *State, sink Sink) {
	for node := nodeClassify; node != nodeEnd; {
		node = g.step(ctx, st, node, sink)
	}
}

func (g *Graph) step(ctx context.Context, st *State, node nodeID, sink Sink) nodeID {
	switch node {
	case nodeClassify:
		return g.classifyQuery(ctx, st)
	case nodeDirectAnswer:
		return g.directAnswer(ctx, st, sink)
	case nodeRefineQuery:
		return g.refineQuery(ctx, st)
	case nodeSemanticSearch:
		return g.semanticSearch(ctx, st)
	case nodeSynthesize:
		return g.synthesizeAnswer(ctx, st, sink)
	default:
		return nodeEnd
	}
}
