package models

import "time"

type Document struct {
	ID         string
	Name       string
	FileType   string
	WordCount  int
	ChunkCount int
	CreatedAt  time.Time
}

type DocumentChunk struct {
	ID         string
	DocID      string
	ChunkIndex int
	Text       string
	StartWord  int
	EndWord    int
	CreatedAt  time.Time
}

type QueryRecord struct {
	ID                string
	QueryText         string
	Response          string
	Sources           []string
	ContextChunksUsed int
	Status            string
	LatencyMS         int64
	CreatedAt         time.Time
}
