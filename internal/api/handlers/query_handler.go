package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/cache/redis"
	"github.com/docmind/backend/internal/coordinator"
	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/metrics"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/internal/storage/models"
	"github.com/docmind/backend/internal/storage/sqlite"
	"github.com/docmind/backend/pkg/logger"
	"github.com/docmind/backend/pkg/utils"
)

const maxQueryLength = 2000

type QueryHandler struct {
	coordinator *coordinator.Coordinator
	store       *sqlite.Client
	cache       *redis.Client
}

// NewQueryHandler wires the query endpoints. cache may be nil, which disables
// response caching.
func NewQueryHandler(coord *coordinator.Coordinator, store *sqlite.Client, cache *redis.Client) *QueryHandler {
	return &QueryHandler{
		coordinator: coord,
		store:       store,
		cache:       cache,
	}
}

type queryRequest struct {
	Query               string               `json:"query"`
	ConversationHistory []domain.HistoryTurn `json:"conversation_history,omitempty"`
}

type queryResponse struct {
	Status            string   `json:"status"`
	TraceID           string   `json:"trace_id"`
	Query             string   `json:"query"`
	Response          string   `json:"response"`
	Sources           []string `json:"sources"`
	ContextChunksUsed int      `json:"context_chunks_used"`
	Cached            bool     `json:"cached,omitempty"`
}

// Query runs the retrieve -> synthesize workflow for one question.
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query must not be empty",
		})
	}
	if len(req.Query) > maxQueryLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query exceeds the maximum length",
		})
	}

	// Only history-free queries are cacheable; history changes the response.
	queryHash := utils.HashString(req.Query)
	if h.cache != nil && len(req.ConversationHistory) == 0 {
		var cached queryResponse
		hit, err := h.cache.GetQuery(c.Context(), queryHash, &cached)
		if err != nil {
			logger.Warn("Query cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.Inc()
			cached.Cached = true
			return c.JSON(cached)
		}
		metrics.CacheMisses.Inc()
	}

	traceID := uuid.New().String()
	msg := protocol.New("APIServer", coordinator.Name, protocol.QueryRequest, traceID, &protocol.QueryRequestPayload{
		Query:               req.Query,
		ConversationHistory: req.ConversationHistory,
	})

	start := time.Now()
	result := h.coordinator.HandleMessage(msg)
	elapsed := time.Since(start)
	metrics.QueryDuration.WithLabelValues("query_processing").Observe(elapsed.Seconds())

	if result.Type == protocol.Error {
		errPayload := result.Payload.(*protocol.ErrorPayload)
		metrics.QueryTotal.WithLabelValues("failed").Inc()
		h.record(&models.QueryRecord{
			ID:        traceID,
			QueryText: req.Query,
			Status:    "failed",
			LatencyMS: elapsed.Milliseconds(),
			CreatedAt: time.Now(),
		})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status":   "failed",
			"trace_id": traceID,
			"error":    errPayload.Error,
		})
	}

	success := result.Payload.(*protocol.SuccessPayload)
	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.RetrievalResultsCount.Observe(float64(success.ContextChunksUsed))

	resp := queryResponse{
		Status:            "success",
		TraceID:           traceID,
		Query:             success.Query,
		Response:          success.Response,
		Sources:           success.Sources,
		ContextChunksUsed: success.ContextChunksUsed,
	}

	h.record(&models.QueryRecord{
		ID:                traceID,
		QueryText:         req.Query,
		Response:          success.Response,
		Sources:           success.Sources,
		ContextChunksUsed: success.ContextChunksUsed,
		Status:            "success",
		LatencyMS:         elapsed.Milliseconds(),
		CreatedAt:         time.Now(),
	})

	if h.cache != nil && len(req.ConversationHistory) == 0 {
		if err := h.cache.SetQuery(c.Context(), queryHash, resp); err != nil {
			logger.Warn("Failed to cache query response", zap.Error(err))
		}
	}

	return c.JSON(resp)
}

// History lists recent query records, newest first.
func (h *QueryHandler) History(c *fiber.Ctx) error {
	if h.store == nil {
		return c.JSON(fiber.Map{"queries": []models.QueryRecord{}})
	}

	limit := c.QueryInt("limit", 50)
	records, err := h.store.ListQueryHistory(limit)
	if err != nil {
		logger.Error("Failed to list query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load query history",
		})
	}
	if records == nil {
		records = []models.QueryRecord{}
	}

	return c.JSON(fiber.Map{"queries": records})
}

func (h *QueryHandler) record(rec *models.QueryRecord) {
	if h.store == nil {
		return
	}
	if err := h.store.InsertQueryRecord(rec); err != nil {
		logger.Error("Failed to persist query record", zap.Error(err))
	}
}
