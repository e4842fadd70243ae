package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/docmind/backend/internal/domain"
)

// Payload is the closed union of per-type payload schemas. Each message type
// maps to exactly one concrete payload struct; decoding selects the variant
// from the envelope type.
type Payload interface {
	isPayload()
}

// DocumentUploadPayload starts the ingest workflow.
type DocumentUploadPayload struct {
	FileName    string `json:"file_name"`
	FileContent []byte `json:"file_content"`
	FileType    string `json:"file_type"`
}

// DocumentParsedPayload is the ingestion agent's hand-off to indexing.
type DocumentParsedPayload struct {
	Status      string                 `json:"status"`
	DocumentID  string                 `json:"document_id"`
	FileName    string                 `json:"file_name"`
	Chunks      []domain.Chunk         `json:"chunks"`
	Metadata    map[string]interface{} `json:"metadata"`
	TotalChunks int                    `json:"total_chunks"`
}

// IngestionCompletePayload reports how many chunks made it into the index.
type IngestionCompletePayload struct {
	Status        string `json:"status"`
	DocumentID    string `json:"document_id"`
	FileName      string `json:"file_name"`
	IndexedChunks int    `json:"indexed_chunks"`
	TotalChunks   int    `json:"total_chunks"`
}

// QueryRequestPayload starts the query workflow.
type QueryRequestPayload struct {
	Query               string               `json:"query"`
	ConversationHistory []domain.HistoryTurn `json:"conversation_history,omitempty"`
}

// RetrievalRequestPayload asks the retrieval agent for context.
type RetrievalRequestPayload struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RetrievalResultPayload carries ranked chunks plus deduplicated sources. The
// coordinator merges conversation history into it before synthesis.
type RetrievalResultPayload struct {
	Status              string                  `json:"status"`
	Query               string                  `json:"query"`
	RetrievedChunks     []domain.RetrievedChunk `json:"retrieved_chunks"`
	Sources             []string                `json:"sources"`
	TotalResults        int                     `json:"total_results"`
	ConversationHistory []domain.HistoryTurn    `json:"conversation_history,omitempty"`
}

// LLMResponsePayload is the synthesizer's answer.
type LLMResponsePayload struct {
	Status            string   `json:"status"`
	Query             string   `json:"query"`
	Response          string   `json:"response"`
	Sources           []string `json:"sources"`
	ContextChunksUsed int      `json:"context_chunks_used"`
}

// ErrorPayload describes a failure and the message type that caused it.
type ErrorPayload struct {
	Status       string      `json:"status,omitempty"`
	Error        string      `json:"error"`
	OriginalType MessageType `json:"original_type,omitempty"`
}

// SuccessPayload is the coordinator's workflow result. Upload and query
// workflows populate different subsets of the fields.
type SuccessPayload struct {
	Status            string   `json:"status"`
	Workflow          string   `json:"workflow"`
	DocumentID        string   `json:"document_id,omitempty"`
	FileName          string   `json:"file_name,omitempty"`
	IndexedChunks     int      `json:"indexed_chunks,omitempty"`
	Query             string   `json:"query,omitempty"`
	Response          string   `json:"response,omitempty"`
	Sources           []string `json:"sources,omitempty"`
	ContextChunksUsed int      `json:"context_chunks_used,omitempty"`
}

func (*DocumentUploadPayload) isPayload()    {}
func (*DocumentParsedPayload) isPayload()    {}
func (*IngestionCompletePayload) isPayload() {}
func (*QueryRequestPayload) isPayload()      {}
func (*RetrievalRequestPayload) isPayload()  {}
func (*RetrievalResultPayload) isPayload()   {}
func (*LLMResponsePayload) isPayload()       {}
func (*ErrorPayload) isPayload()             {}
func (*SuccessPayload) isPayload()           {}

func decodePayload(msgType MessageType, data json.RawMessage) (Payload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("message of type %s has no payload", msgType)
	}

	var payload Payload
	switch msgType {
	case DocumentUpload:
		payload = &DocumentUploadPayload{}
	case DocumentParsed:
		payload = &DocumentParsedPayload{}
	case IngestionComplete:
		payload = &IngestionCompletePayload{}
	case QueryRequest:
		payload = &QueryRequestPayload{}
	case RetrievalRequest:
		payload = &RetrievalRequestPayload{}
	case RetrievalResult:
		payload = &RetrievalResultPayload{}
	case LLMResponse:
		payload = &LLMResponsePayload{}
	case Error:
		payload = &ErrorPayload{}
	case Success:
		payload = &SuccessPayload{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", msgType, err)
	}
	return payload, nil
}
