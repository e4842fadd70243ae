package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRejectsDimensionMismatch(t *testing.T) {
	idx := NewIndex(3)

	err := idx.Insert("a", []float64{1, 0}, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, idx.Count())
}

func TestInsertNormalizesStoredVector(t *testing.T) {
	idx := NewIndex(2)

	require.NoError(t, idx.Insert("a", []float64{3, 4}, nil))

	hits := idx.Search([]float64{3, 4}, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	idx := NewIndex(3)

	require.NoError(t, idx.Insert("x", []float64{0, 1, 0}, nil))
	require.NoError(t, idx.Insert("y", []float64{1, 0, 0}, nil))
	require.NoError(t, idx.Insert("z", []float64{1, 1, 0}, nil))

	hits := idx.Search([]float64{1, 0, 0}, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "y", hits[0].ID)
	assert.Equal(t, "z", hits[1].ID)
	assert.Equal(t, "x", hits[2].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	idx := NewIndex(2)

	require.NoError(t, idx.Insert("first", []float64{1, 0}, nil))
	require.NoError(t, idx.Insert("second", []float64{1, 0}, nil))

	hits := idx.Search([]float64{1, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].ID)
	assert.Equal(t, "second", hits[1].ID)
}

func TestSearchCapsAtTopK(t *testing.T) {
	idx := NewIndex(2)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, idx.Insert(id, []float64{float64(i + 1), 1}, nil))
	}

	assert.Len(t, idx.Search([]float64{1, 1}, 2), 2)
	assert.Len(t, idx.Search([]float64{1, 1}, 10), 4)
	assert.Nil(t, idx.Search([]float64{1, 1}, 0))
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := NewIndex(2)
	assert.Nil(t, idx.Search([]float64{1, 0}, 5))
}

func TestDeleteIsSoft(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Insert("a", []float64{1, 0}, map[string]interface{}{"text": "hello"}))
	require.NoError(t, idx.Insert("b", []float64{0, 1}, nil))

	assert.True(t, idx.Delete("a"))
	assert.False(t, idx.Delete("missing"))

	// the row stays in the scan
	hits := idx.Search([]float64{1, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)

	meta, ok := idx.Metadata("a")
	require.True(t, ok)
	assert.Equal(t, true, meta["deleted"])
	assert.Equal(t, "hello", meta["text"])

	stats := idx.Stats()
	assert.Equal(t, 2, stats.TotalVectors)
	assert.Equal(t, 1, stats.ActiveVectors)
	assert.Equal(t, 1, stats.DeletedVectors)
	assert.Equal(t, "flat_ip", stats.IndexType)
}

func TestMetadataReturnsCopy(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Insert("a", []float64{1, 0}, map[string]interface{}{"k": "v"}))

	meta, ok := idx.Metadata("a")
	require.True(t, ok)
	meta["k"] = "mutated"

	again, _ := idx.Metadata("a")
	assert.Equal(t, "v", again["k"])

	_, ok = idx.Metadata("missing")
	assert.False(t, ok)
}

func TestClearResetsIndex(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Insert("a", []float64{1, 0}, nil))

	idx.Clear()
	assert.Equal(t, 0, idx.Count())
	assert.Nil(t, idx.Search([]float64{1, 0}, 5))

	require.NoError(t, idx.Insert("b", []float64{0, 1}, nil))
	assert.Equal(t, 1, idx.Count())
}

func TestZeroVectorStoredAsIs(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Insert("zero", []float64{0, 0}, nil))

	hits := idx.Search([]float64{1, 0}, 1)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Score)
}
