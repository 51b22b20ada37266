package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"law-agent/config"
	"law-agent/web/types"

	"go.uber.org/zap"
)

type streamChoice struct {
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	Index int `json:"index"`
}

type streamResponse struct {
	Choices []streamChoice `json:"choices"`
}

type chatRequest struct {
	Messages []types.AgentMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message types.AgentMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Content string `json:"content"`
}

type embeddingResponse []struct {
	Embedding [][]float32 `json:"embedding"`
}

// Client talks to OpenAI-compatible chat and embedding endpoints. It is
// the process's single language-model gateway; the orchestration graph
// consumes it through an interface so tests can substitute a fake.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	// Streaming requests rely on context cancellation or the server
	// closing the stream; the timeout bounds everything else.
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// Chat performs a non-streaming chat completion call against the main model.
func (c *Client) Chat(ctx context.Context, messages []types.AgentMessage) (string, error) {
	jsonBody, err := json.Marshal(chatRequest{Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(c.cfg.MainLLMHost, "/"))
	resp, err := c.doWithRetry(ctx, url, jsonBody, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm server status %s: %s", resp.Status, string(bodyBytes))
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no response choices from llm server")
	}
	return cr.Choices[0].Message.Content, nil
}

// ChatStream performs a streaming chat completion call. The request is sent
// before returning so that connection failures surface as an error instead
// of a silently empty channel; the caller decides how to degrade.
func (c *Client) ChatStream(ctx context.Context, messages []types.AgentMessage) (<-chan string, error) {
	jsonBody, err := json.Marshal(chatRequest{Messages: messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(c.cfg.MainLLMHost, "/"))
	headers := map[string]string{"Accept": "text/event-stream"}
	resp, err := c.doWithRetry(ctx, url, jsonBody, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("llm server status %s: %s", resp.Status, string(bodyBytes))
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}
			var sr streamResponse
			if err := json.Unmarshal([]byte(data), &sr); err != nil {
				continue
			}
			if len(sr.Choices) == 0 {
				continue
			}
			chunk := sr.Choices[0].Delta.Content
			if chunk == "" {
				continue
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.logger.Error("read chat stream", zap.Error(err))
		}
	}()

	return out, nil
}

// Embed generates an embedding vector for the provided text using the
// embedding model host.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Content: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", strings.TrimRight(c.cfg.EmbeddingLLMHost, "/"))
	resp, err := c.doWithRetry(ctx, url, jsonBody, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server status %s: %s", resp.Status, string(bodyBytes))
	}

	var er embeddingResponse
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(er) == 0 || len(er[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response was empty")
	}
	return er[0].Embedding[0], nil
}

// doWithRetry posts the body, retrying with backoff while the backend
// reports 503 (model still loading). The response body is open on return.
func (c *Client) doWithRetry(ctx context.Context, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create llm request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.LLMAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			// Do not retry on context cancellation/deadline
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if resp.StatusCode == http.StatusServiceUnavailable {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.logger.Warn("LLM backend unavailable, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("backend unavailable after %d attempts", c.cfg.MaxRetries)
	}
	return nil, fmt.Errorf("no response from llm server: %w", lastErr)
}

func (c *Client) backoffSleep(attempt int) {
	// Exponential backoff with configurable jitter and cap
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second // config normalization should prevent this
	}
	d := base * time.Duration(1<<attempt)
	maxWait := c.cfg.LLMBackoffMaxSeconds
	if maxWait > 0 && d > maxWait {
		d = maxWait
	}
	jitterRatio := c.cfg.LLMBackoffJitterRatio
	if jitterRatio < 0 || jitterRatio > 1 {
		jitterRatio = 0.1
	}
	jitter := time.Duration(float64(d) * jitterRatio)
	time.Sleep(d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1)))
}
