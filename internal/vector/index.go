// Package vector implements a flat in-memory similarity index over
// inner-product scores. Vectors are L2-normalized on insert and on query, so
// the inner product equals cosine similarity.
package vector

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Hit is one similarity result.
type Hit struct {
	ID    string
	Score float64
}

// Stats describes the index contents. Deleted vectors stay in the similarity
// scan; only the flag distinguishes them.
type Stats struct {
	TotalVectors   int    `json:"total_vectors"`
	ActiveVectors  int    `json:"active_vectors"`
	DeletedVectors int    `json:"deleted_vectors"`
	Dimension      int    `json:"dimension"`
	IndexType      string `json:"index_type"`
}

// Index stores vectors append-only alongside a metadata map per id. Rows are
// never physically removed: Delete only flips a deleted flag in metadata, and
// flagged rows can still surface in Search results.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	metadata  map[string]map[string]interface{}
	idToIndex map[string]int
	indexToID map[int]string
	nextIndex int
}

func NewIndex(dimension int) *Index {
	return &Index{
		dimension: dimension,
		metadata:  make(map[string]map[string]interface{}),
		idToIndex: make(map[string]int),
		indexToID: make(map[int]string),
	}
}

// Insert adds a vector under id. The stored copy is L2-normalized; a
// zero-norm vector is stored as-is.
func (x *Index) Insert(id string, vec []float64, metadata map[string]interface{}) error {
	if len(vec) != x.dimension {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vec), x.dimension)
	}

	stored := normalize(vec)

	meta := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	row := x.nextIndex
	x.vectors = append(x.vectors, stored)
	x.idToIndex[id] = row
	x.indexToID[row] = id
	x.metadata[id] = meta
	x.nextIndex++

	return nil
}

// Search returns up to topK hits sorted by descending similarity, ties broken
// by insertion order.
func (x *Index) Search(query []float64, topK int) []Hit {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 || topK <= 0 {
		return nil
	}

	q := normalize(query)

	rows := make([]int, len(x.vectors))
	scores := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		rows[i] = i
		scores[i] = dot(v, q)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return scores[rows[i]] > scores[rows[j]]
	})

	if topK > len(rows) {
		topK = len(rows)
	}

	hits := make([]Hit, 0, topK)
	for _, row := range rows[:topK] {
		id, ok := x.indexToID[row]
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: scores[row]})
	}
	return hits
}

// Delete soft-deletes id by flagging its metadata. It reports whether the id
// existed. The vector itself remains in the similarity scan.
func (x *Index) Delete(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	meta, ok := x.metadata[id]
	if !ok {
		return false
	}
	meta["deleted"] = true
	return true
}

// Metadata returns a copy of the metadata stored under id.
func (x *Index) Metadata(id string) (map[string]interface{}, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	meta, ok := x.metadata[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out, true
}

// Count reports the number of stored vectors, deleted rows included.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	active := 0
	for _, meta := range x.metadata {
		if deleted, _ := meta["deleted"].(bool); !deleted {
			active++
		}
	}
	return Stats{
		TotalVectors:   len(x.vectors),
		ActiveVectors:  active,
		DeletedVectors: len(x.vectors) - active,
		Dimension:      x.dimension,
		IndexType:      "flat_ip",
	}
}

// Clear drops all vectors and metadata.
func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = nil
	x.metadata = make(map[string]map[string]interface{})
	x.idToIndex = make(map[string]int)
	x.indexToID = make(map[int]string)
	x.nextIndex = 0
}

func normalize(vec []float64) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)

	var norm float64
	for _, v := range out {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range out {
			out[i] /= norm
		}
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
