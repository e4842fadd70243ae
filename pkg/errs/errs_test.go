package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := Validation("missing field %s", "name")
	assert.Equal(t, "validation: missing field name", err.Error())
	assert.Equal(t, "missing field name", err.Message())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIndexing, cause, "failed to persist index")

	assert.Equal(t, "indexing: failed to persist index: disk full", err.Error())
	assert.Equal(t, "failed to persist index: disk full", err.Message())
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRetrieval, KindOf(Retrieval("no query")))
	assert.Equal(t, KindParse, KindOf(Parse(errors.New("bad bytes"), "csv parsing failed")))
	assert.Equal(t, KindCoordination, KindOf(errors.New("plain error")))
}

func TestKindOfUnwrapsNestedErrors(t *testing.T) {
	inner := UnsupportedFormat("unsupported file type: %s", "a.png")
	outer := fmt.Errorf("ingest: %w", inner)

	assert.Equal(t, KindUnsupportedFormat, KindOf(outer))
	assert.True(t, Is(outer, KindUnsupportedFormat))
	assert.False(t, Is(outer, KindValidation))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "no query provided", MessageOf(Retrieval("no query provided")))
	assert.Equal(t, "plain error", MessageOf(errors.New("plain error")))
}

func TestConstructorsSetKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{Validation("v"), KindValidation},
		{UnsupportedFormat("u"), KindUnsupportedFormat},
		{Parse(errors.New("x"), "p"), KindParse},
		{Retrieval("r"), KindRetrieval},
		{Generation("g"), KindGeneration},
		{Routing("ro"), KindRouting},
		{Coordination("c"), KindCoordination},
	}
	for _, tc := range cases {
		require.True(t, Is(tc.err, tc.kind), "kind: %s", tc.kind)
	}
}
