// Package sqlite persists ingested documents and query history.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/storage/models"
	"github.com/docmind/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err = db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		file_type TEXT,
		word_count INTEGER,
		chunk_count INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_name ON documents(name);
	CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);

	CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		start_word INTEGER,
		end_word INTEGER,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (doc_id) REFERENCES documents(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_doc ON document_chunks(doc_id);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		response TEXT,
		sources TEXT,
		context_chunks_used INTEGER,
		status TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertDocument(doc *models.Document) error {
	_, err := c.db.Exec(
		`INSERT INTO documents (id, name, file_type, word_count, chunk_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.FileType, doc.WordCount, doc.ChunkCount, doc.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (c *Client) InsertChunk(chunk *models.DocumentChunk) error {
	_, err := c.db.Exec(
		`INSERT INTO document_chunks (id, doc_id, chunk_index, text, start_word, end_word, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.DocID, chunk.ChunkIndex, chunk.Text, chunk.StartWord, chunk.EndWord, chunk.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

func (c *Client) GetDocument(id string) (*models.Document, error) {
	row := c.db.QueryRow(
		`SELECT id, name, file_type, word_count, chunk_count, created_at
		 FROM documents WHERE id = ?`, id,
	)

	var doc models.Document
	var createdAt int64
	err := row.Scan(&doc.ID, &doc.Name, &doc.FileType, &doc.WordCount, &doc.ChunkCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.CreatedAt = time.Unix(createdAt, 0)
	return &doc, nil
}

func (c *Client) CountChunks(docID string) (int, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM document_chunks WHERE doc_id = ?`, docID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	sources, err := json.Marshal(record.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT INTO query_history (id, query_text, response, sources, context_chunks_used, status, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.QueryText, record.Response, string(sources),
		record.ContextChunksUsed, record.Status, record.LatencyMS, record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

func (c *Client) ListQueryHistory(limit int) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(
		`SELECT id, query_text, response, sources, context_chunks_used, status, latency_ms, created_at
		 FROM query_history ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var record models.QueryRecord
		var sources string
		var createdAt int64
		err := rows.Scan(&record.ID, &record.QueryText, &record.Response, &sources,
			&record.ContextChunksUsed, &record.Status, &record.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &record.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, record)
	}
	return records, rows.Err()
}

// ClearAll removes every stored document, chunk, and query record.
func (c *Client) ClearAll() error {
	for _, table := range []string{"document_chunks", "documents", "query_history"} {
		if _, err := c.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
