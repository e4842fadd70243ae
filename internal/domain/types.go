// Package domain holds the data model shared across agents.
package domain

// Document is a parsed upload owned by the ingestion agent.
type Document struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Content  string                 `json:"content"`
	Chunks   []Chunk                `json:"chunks"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Chunk is a bounded, overlapping word-range excerpt of a document. It is the
// unit of indexing and retrieval and is immutable once produced.
type Chunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	ChunkIndex int    `json:"chunk_index"`
	WordCount  int    `json:"word_count"`
	StartWord  int    `json:"start_word"`
	EndWord    int    `json:"end_word"`
}

// RetrievedChunk is a chunk resolved from a similarity hit, annotated with its
// score.
type RetrievedChunk struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	SourceFile      string  `json:"source_file"`
	SimilarityScore float64 `json:"similarity_score"`
	ChunkIndex      int     `json:"chunk_index"`
}

// HistoryTurn is one prior exchange in a conversation, passed through to the
// synthesizer.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Parsed is the output of the external parse capability.
type Parsed struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}
