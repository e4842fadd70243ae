// Package ingestion turns uploaded documents into overlapping text chunks
// ready for indexing.
package ingestion

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/parser"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/pkg/errs"
	"github.com/docmind/backend/pkg/logger"
)

// Name identifies the agent in message envelopes.
const Name = "IngestionAgent"

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Agent parses uploads, chunks their text, and owns the resulting document
// store.
type Agent struct {
	parser       parser.Parser
	chunkSize    int
	chunkOverlap int

	mu        sync.RWMutex
	documents map[string]domain.Document
}

func NewAgent(p parser.Parser) *Agent {
	return &Agent{
		parser:       p,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		documents:    make(map[string]domain.Document),
	}
}

// SetChunking overrides the chunk window. Overlap must be smaller than size;
// invalid values keep the defaults.
func (a *Agent) SetChunking(size, overlap int) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return
	}
	a.chunkSize = size
	a.chunkOverlap = overlap
}

// Ingest parses and chunks one upload, storing the resulting document.
func (a *Agent) Ingest(fileName string, content []byte, fileType string) (*domain.Document, error) {
	if fileName == "" || len(content) == 0 {
		return nil, errs.Validation("missing required fields: file_name or file_content")
	}

	format, err := parser.FromFileName(fileName)
	if err != nil {
		return nil, err
	}

	parsed, err := a.parser.Parse(content, format)
	if err != nil {
		return nil, errs.Wrap(errs.KindParse, err, "failed to parse document %s", fileName)
	}

	chunks := chunkWords(parsed.Text, fileName, a.chunkSize, a.chunkOverlap)

	metadata := map[string]interface{}{
		"file_name":   fileName,
		"file_type":   fileType,
		"parser_type": string(format),
		"word_count":  wordCount(parsed.Text),
	}
	for k, v := range parsed.Metadata {
		metadata[k] = v
	}

	doc := domain.Document{
		ID:       uuid.New().String(),
		Name:     fileName,
		Type:     fileType,
		Content:  parsed.Text,
		Chunks:   chunks,
		Metadata: metadata,
	}

	a.mu.Lock()
	a.documents[doc.ID] = doc
	a.mu.Unlock()

	logger.Info("Document ingested",
		zap.String("document_id", doc.ID),
		zap.String("file_name", fileName),
		zap.Int("chunks", len(chunks)),
	)

	return &doc, nil
}

// HandleMessage dispatches a protocol message to the agent. Failures are
// converted into ERROR replies; they never escape as raw faults.
func (a *Agent) HandleMessage(msg protocol.Message) protocol.Message {
	switch msg.Type {
	case protocol.DocumentUpload:
		payload, ok := msg.Payload.(*protocol.DocumentUploadPayload)
		if !ok {
			return protocol.NewError(msg, Name, "malformed DOCUMENT_UPLOAD payload")
		}
		doc, err := a.Ingest(payload.FileName, payload.FileContent, payload.FileType)
		if err != nil {
			return protocol.NewError(msg, Name, errs.MessageOf(err))
		}
		return protocol.NewResponse(msg, Name, protocol.DocumentParsed, &protocol.DocumentParsedPayload{
			Status:      "success",
			DocumentID:  doc.ID,
			FileName:    doc.Name,
			Chunks:      doc.Chunks,
			Metadata:    doc.Metadata,
			TotalChunks: len(doc.Chunks),
		})
	default:
		err := errs.Routing("unsupported message type: %s", msg.Type)
		return protocol.NewError(msg, Name, errs.MessageOf(err))
	}
}

// Document looks up a stored document by id.
func (a *Agent) Document(id string) (domain.Document, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	doc, ok := a.documents[id]
	return doc, ok
}

// DocumentCount reports how many documents the agent holds.
func (a *Agent) DocumentCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.documents)
}

// Clear drops all stored documents.
func (a *Agent) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.documents = make(map[string]domain.Document)
}

func wordCount(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			inWord = false
		default:
			if !inWord {
				n++
			}
			inWord = true
		}
	}
	return n
}
