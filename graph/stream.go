package graph

import (
	"context"
	"strings"

	"law-agent/web/types"

	"go.uber.org/zap"
)

// generate produces the answer text for a prompt. With a sink it prefers
// the gateway's incremental stream; when the stream cannot be opened it
// degrades, explicitly, to a batch call whose output is replayed as
// whitespace-delimited fragments.
func (g *Graph) generate(ctx context.Context, prompt string, sink Sink) (string, error) {
	messages := []types.AgentMessage{{Role: RoleUser, Content: prompt}}
	if sink == nil {
		return g.gateway.Chat(ctx, messages)
	}

	fragments, err := g.gateway.ChatStream(ctx, messages)
	if err != nil {
		g.logger.Warn("Streaming unavailable, falling back to batch generation", zap.Error(err))
		text, chatErr := g.gateway.Chat(ctx, messages)
		if chatErr != nil {
			return "", chatErr
		}
		g.emitText(text, sink)
		return text, nil
	}

	var full strings.Builder
	forwarding := true
	for fragment := range fragments {
		full.WriteString(fragment)
		if !forwarding {
			continue
		}
		if err := sink(fragment); err != nil {
			// Consumer is gone; keep draining so the state still gets the
			// complete message.
			g.logger.Debug("Stream consumer closed, no longer forwarding", zap.Error(err))
			forwarding = false
		}
	}
	return full.String(), nil
}

// emitText replays already-complete text to the sink as word fragments,
// preserving order. A degraded approximation of streaming, not true
// incrementality.
func (g *Graph) emitText(text string, sink Sink) {
	if sink == nil {
		return
	}
	words := strings.Fields(text)
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		if err := sink(word); err != nil {
			return
		}
	}
}
