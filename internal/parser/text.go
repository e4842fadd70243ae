package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docmind/backend/internal/domain"
	"github.com/docmind/backend/pkg/errs"
)

func parseText(content []byte) (domain.Parsed, error) {
	text, encoding := decodeBytes(content)
	return domain.Parsed{
		Text: text,
		Metadata: map[string]interface{}{
			"parser":     "text",
			"encoding":   encoding,
			"line_count": len(strings.Split(text, "\n")),
		},
	}, nil
}

const maxCSVRows = 1000

func parseCSV(content []byte) (domain.Parsed, error) {
	text, _ := decodeBytes(content)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return domain.Parsed{}, errs.Parse(err, "csv parsing failed")
	}
	if len(records) == 0 {
		return domain.Parsed{}, errs.New(errs.KindParse, "csv file is empty")
	}

	headers := records[0]
	rows := records[1:]

	var parts []string
	parts = append(parts, fmt.Sprintf("[CSV Headers]\n%s", strings.Join(headers, " | ")))

	limit := len(rows)
	if limit > maxCSVRows {
		limit = maxCSVRows
	}
	for i := 0; i < limit; i++ {
		parts = append(parts, fmt.Sprintf("Row %d: %s", i+1, strings.Join(rows[i], " | ")))
	}
	if len(rows) > limit {
		parts = append(parts, fmt.Sprintf("... and %d more rows", len(rows)-limit))
	}

	return domain.Parsed{
		Text: strings.Join(parts, "\n"),
		Metadata: map[string]interface{}{
			"parser":       "csv",
			"row_count":    len(rows),
			"column_count": len(headers),
			"columns":      headers,
		},
	}, nil
}

// decodeBytes interprets content as UTF-8 and falls back to Latin-1 when the
// bytes are not valid UTF-8, so legacy exports still ingest.
func decodeBytes(content []byte) (string, string) {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(content) {
		return string(content), "utf-8"
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes), "latin-1"
}
