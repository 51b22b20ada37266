package types

// AgentMessage represents a role-tagged message in the format expected by
// the LLM gateway.
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationRequest is the transport input. Prompt is an accepted alias
// for Query; CustomPrompt optionally overrides the grounded prompt template.
type GenerationRequest struct {
	Query        string `json:"query"`
	Prompt       string `json:"prompt"`
	CustomPrompt string `json:"custom_prompt"`
}

// GenerationResponse is the non-streaming transport output.
type GenerationResponse struct {
	Result string `json:"result"`
	Status string `json:"status"`
}

// StreamFrame is one frame of the streaming response sequence.
type StreamFrame struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  string `json:"status"`
}

// Status values used on the transport boundary.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusStreaming = "streaming"
	StatusCompleted = "completed"
)
