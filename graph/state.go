package graph

import (
	"law-agent/search"
	"law-agent/web/types"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Route values decided by the classification node.
const (
	RouteDirectAnswer = "direct_answer"
	RouteLegalSearch  = "legal_search"
)

// State is the conversation state threaded through one request's graph run.
// It is owned exclusively by that run and discarded afterwards; nothing in
// it is shared across requests.
type State struct {
	Messages     []types.AgentMessage
	Query        string
	RefinedQuery string
	Route        string
	TopDocs      []search.ScoredPassage
	Err          string
	CustomPrompt string
}

// NewState seeds a state with the triggering user message.
func NewState(query string) *State {
	return &State{
		Messages: []types.AgentMessage{{Role: RoleUser, Content: query}},
	}
}

// Answer returns the trailing assistant message, which is the externally
// visible response after a run.
func (s *State) Answer() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

func (s *State) latestUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

func (s *State) appendAssistant(content string) {
	s.Messages = append(s.Messages, types.AgentMessage{Role: RoleAssistant, Content: content})
}
