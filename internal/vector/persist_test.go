package vector

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	vectorPath := filepath.Join(dir, "vectors.bin")
	metadataPath := filepath.Join(dir, "vectors.meta.json")

	original := NewIndex(3)
	require.NoError(t, original.Insert("a", []float64{1, 0, 0}, map[string]interface{}{"text": "alpha"}))
	require.NoError(t, original.Insert("b", []float64{0, 1, 0}, map[string]interface{}{"text": "beta"}))
	require.True(t, original.Delete("b"))

	require.NoError(t, original.Save(vectorPath, metadataPath))

	restored := NewIndex(3)
	require.NoError(t, restored.Load(vectorPath, metadataPath))

	assert.Equal(t, 2, restored.Count())

	hits := restored.Search([]float64{1, 0, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)

	meta, ok := restored.Metadata("b")
	require.True(t, ok)
	assert.Equal(t, true, meta["deleted"])
	assert.Equal(t, "beta", meta["text"])

	stats := restored.Stats()
	assert.Equal(t, 1, stats.ActiveVectors)
	assert.Equal(t, 1, stats.DeletedVectors)
}

func TestLoadRejectsDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	vectorPath := filepath.Join(dir, "vectors.bin")
	metadataPath := filepath.Join(dir, "vectors.meta.json")

	original := NewIndex(3)
	require.NoError(t, original.Insert("a", []float64{1, 0, 0}, nil))
	require.NoError(t, original.Save(vectorPath, metadataPath))

	other := NewIndex(5)
	assert.Error(t, other.Load(vectorPath, metadataPath))
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()

	idx := NewIndex(3)
	err := idx.Load(filepath.Join(dir, "nope.bin"), filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}

func TestSaveEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	vectorPath := filepath.Join(dir, "vectors.bin")
	metadataPath := filepath.Join(dir, "vectors.meta.json")

	empty := NewIndex(4)
	require.NoError(t, empty.Save(vectorPath, metadataPath))

	restored := NewIndex(4)
	require.NoError(t, restored.Load(vectorPath, metadataPath))
	assert.Equal(t, 0, restored.Count())
}
