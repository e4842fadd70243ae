// Package handlers exposes the agent pipeline over HTTP.
package handlers

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/coordinator"
	"github.com/docmind/backend/internal/metrics"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/internal/storage/models"
	"github.com/docmind/backend/internal/storage/sqlite"
	"github.com/docmind/backend/internal/vector"
	"github.com/docmind/backend/pkg/logger"
)

const maxUploadBytes = 10 << 20

type DocumentHandler struct {
	coordinator *coordinator.Coordinator
	store       *sqlite.Client
	index       *vector.Index
	invalidate  func()
}

// NewDocumentHandler wires the upload endpoint. invalidate is called after
// every successful upload to drop stale cached query responses; it may be nil.
func NewDocumentHandler(coord *coordinator.Coordinator, store *sqlite.Client, index *vector.Index, invalidate func()) *DocumentHandler {
	return &DocumentHandler{
		coordinator: coord,
		store:       store,
		index:       index,
		invalidate:  invalidate,
	}
}

// Upload accepts a multipart file, runs the ingest workflow, and persists the
// resulting document and chunks.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing file field in multipart form",
		})
	}

	if fileHeader.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "file exceeds the 10MB upload limit",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	traceID := uuid.New().String()
	msg := protocol.New("APIServer", coordinator.Name, protocol.DocumentUpload, traceID, &protocol.DocumentUploadPayload{
		FileName:    fileHeader.Filename,
		FileContent: content,
		FileType:    fileHeader.Header.Get("Content-Type"),
	})

	start := time.Now()
	result := h.coordinator.HandleMessage(msg)
	metrics.QueryDuration.WithLabelValues("document_upload").Observe(time.Since(start).Seconds())

	if result.Type == protocol.Error {
		errPayload := result.Payload.(*protocol.ErrorPayload)
		logger.Warn("Document upload failed",
			zap.String("trace_id", traceID),
			zap.String("file_name", fileHeader.Filename),
			zap.String("error", errPayload.Error),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status":   "failed",
			"trace_id": traceID,
			"error":    errPayload.Error,
		})
	}

	success := result.Payload.(*protocol.SuccessPayload)

	h.persist(success.DocumentID, fileHeader.Filename)
	if h.invalidate != nil {
		h.invalidate()
	}

	metrics.DocumentsIngested.Inc()
	metrics.ChunksIndexed.Add(float64(success.IndexedChunks))
	metrics.IndexSize.Set(float64(h.index.Count()))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":         "success",
		"trace_id":       traceID,
		"document_id":    success.DocumentID,
		"file_name":      success.FileName,
		"indexed_chunks": success.IndexedChunks,
	})
}

// persist mirrors the in-memory document into SQLite. Storage failures are
// logged but do not fail the upload, since the index already holds the chunks.
func (h *DocumentHandler) persist(documentID, fileName string) {
	if h.store == nil {
		return
	}

	doc, ok := h.coordinator.Document(documentID)
	if !ok {
		return
	}

	wordCount := 0
	if wc, ok := doc.Metadata["word_count"].(int); ok {
		wordCount = wc
	}

	record := &models.Document{
		ID:         doc.ID,
		Name:       doc.Name,
		FileType:   doc.Type,
		WordCount:  wordCount,
		ChunkCount: len(doc.Chunks),
		CreatedAt:  time.Now(),
	}
	if err := h.store.InsertDocument(record); err != nil {
		logger.Error("Failed to persist document", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}

	for _, chunk := range doc.Chunks {
		err := h.store.InsertChunk(&models.DocumentChunk{
			ID:         chunk.ID,
			DocID:      doc.ID,
			ChunkIndex: chunk.ChunkIndex,
			Text:       chunk.Text,
			StartWord:  chunk.StartWord,
			EndWord:    chunk.EndWord,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			logger.Error("Failed to persist chunk", zap.String("chunk_id", chunk.ID), zap.Error(err))
		}
	}

	logger.Info("Document persisted",
		zap.String("document_id", doc.ID),
		zap.String("file_name", fileName),
		zap.Int("chunks", len(doc.Chunks)),
	)
}

// Get returns a stored document without its full chunk text.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	doc, ok := h.coordinator.Document(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	}

	return c.JSON(fiber.Map{
		"id":          doc.ID,
		"name":        doc.Name,
		"type":        doc.Type,
		"chunk_count": len(doc.Chunks),
		"metadata":    doc.Metadata,
	})
}
