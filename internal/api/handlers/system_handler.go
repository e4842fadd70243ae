package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/coordinator"
	"github.com/docmind/backend/internal/metrics"
	"github.com/docmind/backend/internal/storage/sqlite"
	"github.com/docmind/backend/internal/vector"
	"github.com/docmind/backend/pkg/logger"
)

type SystemHandler struct {
	coordinator *coordinator.Coordinator
	store       *sqlite.Client
	index       *vector.Index
	invalidate  func()
}

func NewSystemHandler(coord *coordinator.Coordinator, store *sqlite.Client, index *vector.Index, invalidate func()) *SystemHandler {
	return &SystemHandler{
		coordinator: coord,
		store:       store,
		index:       index,
		invalidate:  invalidate,
	}
}

// Health is the liveness probe.
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Status reports the state of the agents and the index.
func (h *SystemHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"system": h.coordinator.Status(),
		"index":  h.index.Stats(),
	})
}

// Trace returns every message recorded for one workflow run.
func (h *SystemHandler) Trace(c *fiber.Ctx) error {
	traceID := c.Params("id")

	history := h.coordinator.TraceHistory(traceID)
	if len(history) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no messages recorded for this trace",
		})
	}

	return c.JSON(fiber.Map{
		"trace_id": traceID,
		"count":    len(history),
		"messages": history,
	})
}

// RecentMessages returns the tail of the global message log.
func (h *SystemHandler) RecentMessages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	messages := h.coordinator.RecentMessages(limit)

	return c.JSON(fiber.Map{
		"count":    len(messages),
		"messages": messages,
	})
}

// Clear drops every document, index entry, message, and persisted record.
func (h *SystemHandler) Clear(c *fiber.Ctx) error {
	h.coordinator.Clear()

	if h.store != nil {
		if err := h.store.ClearAll(); err != nil {
			logger.Error("Failed to clear persisted records", zap.Error(err))
		}
	}
	if h.invalidate != nil {
		h.invalidate()
	}
	metrics.IndexSize.Set(0)

	return c.JSON(fiber.Map{"status": "cleared"})
}
