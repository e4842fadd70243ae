package handlers

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/coordinator"
	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/pkg/logger"
)

type WebSocketHandler struct {
	coordinator *coordinator.Coordinator
}

func NewWebSocketHandler(coord *coordinator.Coordinator) *WebSocketHandler {
	return &WebSocketHandler{
		coordinator: coord,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type                string               `json:"type"`
			Query               string               `json:"query"`
			ConversationHistory []domain.HistoryTurn `json:"conversation_history,omitempty"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		logger.Info("Processing WebSocket query", zap.String("query", msg.Query))

		err = h.streamResponse(c, msg.Query, msg.ConversationHistory)
		if err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process query")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, queryText string, history []domain.HistoryTurn) error {
	traceID := uuid.New().String()

	h.sendChunk(c, "status", "Processing query...")

	request := protocol.New("WebSocketServer", coordinator.Name, protocol.QueryRequest, traceID, &protocol.QueryRequestPayload{
		Query:               queryText,
		ConversationHistory: history,
	})

	result := h.coordinator.HandleMessage(request)
	if result.Type == protocol.Error {
		errPayload := result.Payload.(*protocol.ErrorPayload)
		h.sendError(c, errPayload.Error)
		return nil
	}

	success := result.Payload.(*protocol.SuccessPayload)

	words := splitIntoWords(success.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	return h.sendComplete(c, traceID, success)
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": content,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, traceID string, success *protocol.SuccessPayload) error {
	msg := map[string]interface{}{
		"type":                "complete",
		"trace_id":            traceID,
		"sources":             success.Sources,
		"context_chunks_used": success.ContextChunksUsed,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
