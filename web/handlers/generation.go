package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"law-agent/graph"
	"law-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GenerationHandler struct {
	graph  *graph.Graph
	logger *zap.Logger
}

func NewGenerationHandler(g *graph.Graph, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{graph: g, logger: logger}
}

// HealthCheck reports service liveness.
func (h *GenerationHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Generate runs the orchestration graph once and returns the complete answer.
func (h *GenerationHandler) Generate(c *gin.Context) {
	st, requestID, ok := h.bindState(c)
	if !ok {
		return
	}

	h.graph.Run(c.Request.Context(), st)

	if st.Err != "" {
		h.logger.Warn("Request degraded",
			zap.String("request_id", requestID),
			zap.String("error", st.Err))
	}
	c.JSON(http.StatusOK, types.GenerationResponse{
		Result: st.Answer(),
		Status: types.StatusSuccess,
	})
}

// Stream runs the orchestration graph, emitting the answer as a sequence of
// JSON frames terminated by a completed frame.
func (h *GenerationHandler) Stream(c *gin.Context) {
	st, requestID, ok := h.bindState(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")

	flusher, _ := c.Writer.(http.Flusher)
	encoder := json.NewEncoder(c.Writer)
	writeFrame := func(frame types.StreamFrame) error {
		if err := encoder.Encode(frame); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	ctx := c.Request.Context()
	sink := func(fragment string) error {
		if err := ctx.Err(); err != nil {
			// Client cancelled; drop remaining fragments.
			return err
		}
		return writeFrame(types.StreamFrame{Content: fragment, Status: types.StatusStreaming})
	}

	h.graph.RunStream(ctx, st, sink)

	if st.Err != "" {
		h.logger.Warn("Streamed request degraded",
			zap.String("request_id", requestID),
			zap.String("error", st.Err))
	}
	writeFrame(types.StreamFrame{Status: types.StatusCompleted})
}

// bindState parses the request body into a fresh conversation state. A
// request that cannot even be dispatched is the one case that surfaces as a
// transport-level error frame.
func (h *GenerationHandler) bindState(c *gin.Context) (*graph.State, string, bool) {
	requestID := uuid.NewString()

	var req types.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind generation request",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, types.StreamFrame{
			Error:  "invalid request body",
			Status: types.StatusError,
		})
		return nil, requestID, false
	}

	query := req.Query
	if strings.TrimSpace(query) == "" {
		query = req.Prompt
	}
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, types.StreamFrame{
			Error:  "query must not be empty",
			Status: types.StatusError,
		})
		return nil, requestID, false
	}

	h.logger.Info("Generation request",
		zap.String("request_id", requestID),
		zap.Int("query_chars", len(query)))

	st := graph.NewState(query)
	st.CustomPrompt = req.CustomPrompt
	return st, requestID, true
}
