package graph

import (
	"context"
	"fmt"
	"strings"

	apperrors "law-agent/errors"
	"law-agent/prompts"
	"law-agent/web/types"

	"go.uber.org/zap"
)

const noInformationMessage = "I could not find any relevant information to answer your question. Please try again with a different question."

// classifyQuery extracts the latest user message and asks the gateway a
// forced-choice question to decide the route. On gateway failure the run
// stays on the grounded path (legal_search) rather than answering
// ungrounded.
func (g *Graph) classifyQuery(ctx context.Context, st *State) nodeID {
	st.Query = st.latestUserMessage()

	resp, err := g.gateway.Chat(ctx, []types.AgentMessage{
		{Role: RoleUser, Content: prompts.Classify(st.Query)},
	})
	if err != nil {
		st.Err = apperrors.WrapError(apperrors.ErrGateway, err.Error()).Error()
		st.Query = ""
		st.Route = RouteLegalSearch
		g.logger.Warn("Query classification failed, staying on grounded path", zap.Error(err))
		return nodeRefineQuery
	}

	if strings.Contains(strings.ToLower(resp), "legal") {
		st.Route = RouteLegalSearch
		g.logger.Debug("Classified query", zap.String("route", st.Route))
		return nodeRefineQuery
	}
	st.Route = RouteDirectAnswer
	g.logger.Debug("Classified query", zap.String("route", st.Route))
	return nodeDirectAnswer
}

// directAnswer answers from the model's general knowledge only.
func (g *Graph) directAnswer(ctx context.Context, st *State, sink Sink) nodeID {
	answer, err := g.generate(ctx, prompts.BuildDirect(st.Query), sink)
	if err != nil {
		st.Err = err.Error()
		answer = fmt.Sprintf("I ran into an error: %v", err)
		g.emitText(answer, sink)
		g.logger.Warn("Direct answer generation failed", zap.Error(err))
	}
	st.appendAssistant(answer)
	return nodeEnd
}

// refineQuery rewrites the question into a retrieval-optimized legal query.
// Failures fall back to the original query text.
func (g *Graph) refineQuery(ctx context.Context, st *State) nodeID {
	resp, err := g.gateway.Chat(ctx, []types.AgentMessage{
		{Role: RoleUser, Content: prompts.Refine(st.Query)},
	})
	if err != nil {
		st.Err = apperrors.WrapError(apperrors.ErrGateway, err.Error()).Error()
		st.RefinedQuery = st.Query
		g.logger.Warn("Query refinement failed, using original query", zap.Error(err))
		return nodeSemanticSearch
	}

	st.RefinedQuery = strings.TrimSpace(resp)
	if st.RefinedQuery == "" {
		st.RefinedQuery = st.Query
	}
	g.logger.Debug("Refined query", zap.String("refined", st.RefinedQuery))
	return nodeSemanticSearch
}

// semanticSearch embeds the working query and ranks the corpus. Any
// failure leaves top_docs empty and records the error; the run continues.
func (g *Graph) semanticSearch(ctx context.Context, st *State) nodeID {
	query := st.RefinedQuery
	if strings.TrimSpace(query) == "" {
		query = st.Query
	}
	if strings.TrimSpace(query) == "" {
		st.TopDocs = nil
		st.Err = apperrors.WrapError(apperrors.ErrInvalidInput, "empty search query").Error()
		return nodeSynthesize
	}

	vec, err := g.embedder.Embed(ctx, query)
	if err != nil {
		st.TopDocs = nil
		st.Err = err.Error()
		g.logger.Warn("Query embedding failed, skipping retrieval", zap.Error(err))
		return nodeSynthesize
	}

	st.TopDocs = g.engine.Search(vec, g.topK)
	g.logger.Debug("Retrieved passages",
		zap.String("query", query),
		zap.Int("count", len(st.TopDocs)))
	return nodeSynthesize
}

// synthesizeAnswer composes the grounded answer with its citation suffix.
// With no retrieved context it degrades to a fixed message and never calls
// the gateway.
func (g *Graph) synthesizeAnswer(ctx context.Context, st *State, sink Sink) nodeID {
	if len(st.TopDocs) == 0 {
		g.emitText(noInformationMessage, sink)
		st.appendAssistant(noInformationMessage)
		return nodeEnd
	}

	prompt, err := prompts.BuildGroundedWith(st.CustomPrompt, st.Query, st.TopDocs)
	if err != nil {
		st.Err = err.Error()
		g.logger.Warn("Grounded prompt build failed", zap.Error(err))
		g.emitText(noInformationMessage, sink)
		st.appendAssistant(noInformationMessage)
		return nodeEnd
	}

	answer, err := g.generate(ctx, prompt, sink)
	if err != nil {
		st.Err = err.Error()
		msg := fmt.Sprintf("Sorry, I ran into an error while composing the answer: %v", err)
		g.emitText(msg, sink)
		g.logger.Warn("Answer synthesis failed", zap.Error(err))
		st.appendAssistant(msg)
		return nodeEnd
	}

	if suffix := prompts.CitationSuffix(st.TopDocs); suffix != "" {
		if sink != nil {
			sink("\n\n" + suffix)
		}
		answer = answer + "\n\n" + suffix
	}
	st.appendAssistant(answer)
	return nodeEnd
}
