package ingestion

import (
	"strings"

	"github.com/google/uuid"

	"github.com/docmind/backend/internal/domain"
)

// chunkWords splits text into overlapping word windows. Offsets advance by
// size-overlap; the final window is clipped to the end of the word sequence.
// Whitespace-only text produces no chunks.
func chunkWords(text, sourceFile string, size, overlap int) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []domain.Chunk
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		window := words[i:end]
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			Text:       strings.Join(window, " "),
			SourceFile: sourceFile,
			ChunkIndex: len(chunks),
			WordCount:  len(window),
			StartWord:  i,
			EndWord:    end,
		})
	}
	return chunks
}
