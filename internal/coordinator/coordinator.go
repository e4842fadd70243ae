// Package coordinator sequences the ingest and query workflows across the
// agents. Both workflows are strictly sequential: the first sub-agent error
// stops the workflow and becomes the result, with no retries.
package coordinator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/ingestion"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/internal/retrieval"
	"github.com/docmind/backend/internal/synthesis"
	"github.com/docmind/backend/pkg/logger"
)

// Name identifies the coordinator in message envelopes.
const Name = "CoordinatorAgent"

const defaultTopK = 5

// Coordinator dispatches workflow messages to the agents and records every
// exchange with the router.
type Coordinator struct {
	router      *protocol.Router
	ingestion   *ingestion.Agent
	retrieval   *retrieval.Agent
	synthesizer *synthesis.Synthesizer
}

func New(router *protocol.Router, ing *ingestion.Agent, ret *retrieval.Agent, syn *synthesis.Synthesizer) *Coordinator {
	return &Coordinator{
		router:      router,
		ingestion:   ing,
		retrieval:   ret,
		synthesizer: syn,
	}
}

// HandleMessage is the single entry point. Every request resolves to either a
// SUCCESS or an ERROR message; panics inside sequencing are converted into a
// coordination error and never escape.
func (c *Coordinator) HandleMessage(msg protocol.Message) (result protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Workflow panicked",
				zap.String("trace_id", msg.TraceID),
				zap.Any("panic", r),
			)
			result = c.failure(msg, fmt.Sprintf("coordination error: %v", r))
		}
	}()

	c.router.Route(msg)

	switch msg.Type {
	case protocol.DocumentUpload:
		return c.handleDocumentUpload(msg)
	case protocol.QueryRequest:
		return c.handleQueryRequest(msg)
	default:
		return c.failure(msg, fmt.Sprintf("unsupported message type: %s", msg.Type))
	}
}

// handleDocumentUpload runs ingest -> index.
func (c *Coordinator) handleDocumentUpload(msg protocol.Message) protocol.Message {
	ingResp := c.ingestion.HandleMessage(msg)
	c.router.Route(ingResp)
	if ingResp.Type == protocol.Error {
		return c.failure(msg, fmt.Sprintf("Ingestion failed: %s", errorText(ingResp)))
	}

	retResp := c.retrieval.HandleMessage(ingResp)
	c.router.Route(retResp)
	if retResp.Type == protocol.Error {
		return c.failure(msg, fmt.Sprintf("Indexing failed: %s", errorText(retResp)))
	}

	parsed := ingResp.Payload.(*protocol.DocumentParsedPayload)
	indexed := retResp.Payload.(*protocol.IngestionCompletePayload)

	return protocol.NewResponse(msg, Name, protocol.Success, &protocol.SuccessPayload{
		Status:        "success",
		Workflow:      "document_upload_complete",
		DocumentID:    parsed.DocumentID,
		FileName:      parsed.FileName,
		IndexedChunks: indexed.IndexedChunks,
	})
}

// handleQueryRequest runs retrieve -> synthesize.
func (c *Coordinator) handleQueryRequest(msg protocol.Message) protocol.Message {
	payload, ok := msg.Payload.(*protocol.QueryRequestPayload)
	if !ok {
		return c.failure(msg, "malformed QUERY_REQUEST payload")
	}

	retrievalMsg := protocol.New(Name, retrieval.Name, protocol.RetrievalRequest, msg.TraceID, &protocol.RetrievalRequestPayload{
		Query: payload.Query,
		TopK:  defaultTopK,
	})

	retResp := c.retrieval.HandleMessage(retrievalMsg)
	c.router.Route(retResp)
	if retResp.Type == protocol.Error {
		return c.failure(msg, fmt.Sprintf("Retrieval failed: %s", errorText(retResp)))
	}

	retrieved := *retResp.Payload.(*protocol.RetrievalResultPayload)
	retrieved.ConversationHistory = payload.ConversationHistory

	synthMsg := protocol.New(Name, synthesis.Name, protocol.RetrievalResult, msg.TraceID, &retrieved)
	synResp := c.synthesizer.HandleMessage(synthMsg)
	c.router.Route(synResp)
	if synResp.Type == protocol.Error {
		return c.failure(msg, fmt.Sprintf("Response generation failed: %s", errorText(synResp)))
	}

	answer := synResp.Payload.(*protocol.LLMResponsePayload)

	return protocol.NewResponse(msg, Name, protocol.Success, &protocol.SuccessPayload{
		Status:            "success",
		Workflow:          "query_processing_complete",
		Query:             payload.Query,
		Response:          answer.Response,
		Sources:           answer.Sources,
		ContextChunksUsed: answer.ContextChunksUsed,
	})
}

func (c *Coordinator) failure(msg protocol.Message, errText string) protocol.Message {
	return protocol.NewResponse(msg, Name, protocol.Error, &protocol.ErrorPayload{
		Status: "failed",
		Error:  errText,
	})
}

func errorText(msg protocol.Message) string {
	if payload, ok := msg.Payload.(*protocol.ErrorPayload); ok {
		return payload.Error
	}
	return "unknown error"
}

// Document looks up a stored document.
func (c *Coordinator) Document(id string) (domain.Document, bool) {
	return c.ingestion.Document(id)
}

// TraceHistory returns all messages recorded for one trace.
func (c *Coordinator) TraceHistory(traceID string) []protocol.Message {
	return c.router.History(traceID)
}

// RecentMessages returns the tail of the global message log.
func (c *Coordinator) RecentMessages(limit int) []protocol.Message {
	return c.router.Recent(limit)
}

// SystemStatus summarizes the agent set.
type SystemStatus struct {
	Coordinator        string `json:"coordinator"`
	ProcessedDocuments int    `json:"processed_documents"`
	IndexedChunks      int    `json:"indexed_chunks"`
	TotalMessages      int    `json:"total_messages"`
}

func (c *Coordinator) Status() SystemStatus {
	return SystemStatus{
		Coordinator:        "active",
		ProcessedDocuments: c.ingestion.DocumentCount(),
		IndexedChunks:      c.retrieval.IndexedCount(),
		TotalMessages:      c.router.MessageCount(),
	}
}

// Clear resets the document store, the index, and the routing log.
func (c *Coordinator) Clear() {
	c.ingestion.Clear()
	c.retrieval.Clear()
	c.router.Clear()
	logger.Info("All documents and message history cleared")
}
