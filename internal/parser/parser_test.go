package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmind/backend/pkg/errs"
)

func TestFromFileName(t *testing.T) {
	cases := map[string]Format{
		"report.pdf":    FormatPDF,
		"slides.PPTX":   FormatPPTX,
		"letter.docx":   FormatDOCX,
		"data.csv":      FormatCSV,
		"notes.txt":     FormatText,
		"readme.md":     FormatText,
		"archive/a.TXT": FormatText,
	}

	for name, want := range cases {
		format, err := FromFileName(name)
		require.NoError(t, err, "file: %s", name)
		assert.Equal(t, want, format)
	}
}

func TestFromFileNameUnsupported(t *testing.T) {
	for _, name := range []string{"image.png", "binary", "archive.tar.gz"} {
		_, err := FromFileName(name)
		assert.True(t, errs.Is(err, errs.KindUnsupportedFormat), "file: %s", name)
	}
}

func TestRegistryParsesText(t *testing.T) {
	registry := NewRegistry()

	parsed, err := registry.Parse([]byte("hello world\nsecond line"), FormatText)
	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", parsed.Text)
	assert.Equal(t, "utf-8", parsed.Metadata["encoding"])
	assert.Equal(t, 2, parsed.Metadata["line_count"])
}

func TestRegistryTextStripsBOM(t *testing.T) {
	registry := NewRegistry()

	parsed, err := registry.Parse([]byte("\xEF\xBB\xBFhello"), FormatText)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed.Text)
}

func TestRegistryTextFallsBackToLatin1(t *testing.T) {
	registry := NewRegistry()

	// 0xE9 is é in Latin-1 and invalid as a standalone UTF-8 byte
	parsed, err := registry.Parse([]byte{'c', 'a', 'f', 0xE9}, FormatText)
	require.NoError(t, err)
	assert.Equal(t, "café", parsed.Text)
	assert.Equal(t, "latin-1", parsed.Metadata["encoding"])
}

func TestRegistryParsesCSV(t *testing.T) {
	registry := NewRegistry()

	csv := "name,city\nAda,London\nLinus,Helsinki\n"
	parsed, err := registry.Parse([]byte(csv), FormatCSV)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(parsed.Text, "[CSV Headers]\nname | city"))
	assert.Contains(t, parsed.Text, "Row 1: Ada | London")
	assert.Contains(t, parsed.Text, "Row 2: Linus | Helsinki")
	assert.Equal(t, 2, parsed.Metadata["row_count"])
	assert.Equal(t, 2, parsed.Metadata["column_count"])
}

func TestRegistryCSVEmptyFileFails(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Parse([]byte(""), FormatCSV)
	assert.True(t, errs.Is(err, errs.KindParse))
}

func TestRegistryUnregisteredFormatFails(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Parse([]byte("data"), FormatPDF)
	assert.True(t, errs.Is(err, errs.KindParse))
}

func TestRegistryRegisterOverrides(t *testing.T) {
	registry := NewRegistry()
	registry.Register(FormatPDF, parseText)

	parsed, err := registry.Parse([]byte("pretend pdf"), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "pretend pdf", parsed.Text)
}
