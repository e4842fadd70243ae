// Package retrieval indexes document chunks and answers similarity queries
// against them.
package retrieval

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/internal/embedding"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/internal/vector"
	"github.com/docmind/backend/pkg/errs"
	"github.com/docmind/backend/pkg/logger"
)

// Name identifies the agent in message envelopes.
const Name = "RetrievalAgent"

const defaultTopK = 5

type chunkRecord struct {
	domain.Chunk
	DocumentID   string
	DocumentName string
}

// Agent owns the chunk map and drives the embedder and vector index.
type Agent struct {
	embedder *embedding.Generator
	index    *vector.Index

	mu     sync.RWMutex
	chunks map[string]chunkRecord
}

func NewAgent(embedder *embedding.Generator, index *vector.Index) *Agent {
	return &Agent{
		embedder: embedder,
		index:    index,
		chunks:   make(map[string]chunkRecord),
	}
}

// IndexResult reports how many of a document's chunks were indexed.
type IndexResult struct {
	DocumentID    string
	FileName      string
	IndexedChunks int
	TotalChunks   int
}

// IndexDocument embeds and inserts every chunk. A failing chunk is logged and
// skipped; it does not abort the batch.
func (a *Agent) IndexDocument(documentID, fileName string, chunks []domain.Chunk, metadata map[string]interface{}) (*IndexResult, error) {
	if len(chunks) == 0 {
		return nil, errs.Validation("no chunks provided for indexing")
	}

	indexed := 0
	for _, chunk := range chunks {
		vec := a.embedder.Embed(chunk.Text)

		meta := map[string]interface{}{
			"text":          chunk.Text,
			"source_file":   chunk.SourceFile,
			"chunk_index":   chunk.ChunkIndex,
			"word_count":    chunk.WordCount,
			"start_word":    chunk.StartWord,
			"end_word":      chunk.EndWord,
			"document_id":   documentID,
			"document_name": fileName,
		}
		for k, v := range metadata {
			meta[k] = v
		}

		if err := a.index.Insert(chunk.ID, vec, meta); err != nil {
			logger.Warn("Failed to index chunk",
				zap.String("chunk_id", chunk.ID),
				zap.Error(err),
			)
			continue
		}

		a.mu.Lock()
		a.chunks[chunk.ID] = chunkRecord{
			Chunk:        chunk,
			DocumentID:   documentID,
			DocumentName: fileName,
		}
		a.mu.Unlock()
		indexed++
	}

	logger.Info("Document indexed",
		zap.String("document_id", documentID),
		zap.Int("indexed", indexed),
		zap.Int("total", len(chunks)),
	)

	return &IndexResult{
		DocumentID:    documentID,
		FileName:      fileName,
		IndexedChunks: indexed,
		TotalChunks:   len(chunks),
	}, nil
}

// RetrieveResult is the ranked context for a query.
type RetrieveResult struct {
	Query   string
	Chunks  []domain.RetrievedChunk
	Sources []string
}

// Retrieve embeds the query and resolves the nearest vectors back to chunks.
// Hits whose id is unknown to the chunk map are dropped silently. Sources are
// deduplicated preserving first-seen order.
func (a *Agent) Retrieve(query string, topK int) (*RetrieveResult, error) {
	if query == "" {
		return nil, errs.Retrieval("no query provided for retrieval")
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	queryVec := a.embedder.Embed(query)
	hits := a.index.Search(queryVec, topK)

	result := &RetrieveResult{
		Query:   query,
		Chunks:  make([]domain.RetrievedChunk, 0, len(hits)),
		Sources: []string{},
	}
	seen := make(map[string]struct{})

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, hit := range hits {
		record, ok := a.chunks[hit.ID]
		if !ok {
			continue
		}
		result.Chunks = append(result.Chunks, domain.RetrievedChunk{
			ID:              hit.ID,
			Text:            record.Text,
			SourceFile:      record.DocumentName,
			SimilarityScore: hit.Score,
			ChunkIndex:      record.ChunkIndex,
		})

		ref := fmt.Sprintf("%s (chunk %d)", record.DocumentName, record.ChunkIndex)
		if _, dup := seen[ref]; !dup {
			seen[ref] = struct{}{}
			result.Sources = append(result.Sources, ref)
		}
	}

	return result, nil
}

// HandleMessage dispatches a protocol message to the agent.
func (a *Agent) HandleMessage(msg protocol.Message) protocol.Message {
	switch msg.Type {
	case protocol.DocumentParsed:
		payload, ok := msg.Payload.(*protocol.DocumentParsedPayload)
		if !ok {
			return protocol.NewError(msg, Name, "malformed DOCUMENT_PARSED payload")
		}
		result, err := a.IndexDocument(payload.DocumentID, payload.FileName, payload.Chunks, payload.Metadata)
		if err != nil {
			return protocol.NewError(msg, Name, errs.MessageOf(err))
		}
		return protocol.NewResponse(msg, Name, protocol.IngestionComplete, &protocol.IngestionCompletePayload{
			Status:        "success",
			DocumentID:    result.DocumentID,
			FileName:      result.FileName,
			IndexedChunks: result.IndexedChunks,
			TotalChunks:   result.TotalChunks,
		})

	case protocol.RetrievalRequest:
		payload, ok := msg.Payload.(*protocol.RetrievalRequestPayload)
		if !ok {
			return protocol.NewError(msg, Name, "malformed RETRIEVAL_REQUEST payload")
		}
		result, err := a.Retrieve(payload.Query, payload.TopK)
		if err != nil {
			return protocol.NewError(msg, Name, errs.MessageOf(err))
		}
		return protocol.NewResponse(msg, Name, protocol.RetrievalResult, &protocol.RetrievalResultPayload{
			Status:          "success",
			Query:           result.Query,
			RetrievedChunks: result.Chunks,
			Sources:         result.Sources,
			TotalResults:    len(result.Chunks),
		})

	default:
		err := errs.Routing("unsupported message type: %s", msg.Type)
		return protocol.NewError(msg, Name, errs.MessageOf(err))
	}
}

// IndexedCount reports how many chunks the agent has indexed.
func (a *Agent) IndexedCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.chunks)
}

// Clear drops the chunk map and resets the vector index.
func (a *Agent) Clear() {
	a.mu.Lock()
	a.chunks = make(map[string]chunkRecord)
	a.mu.Unlock()
	a.index.Clear()
}
