package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
)

// sidecar is the JSON companion to the binary vector blob. JSON object keys
// are strings, so the row numbers of indexToID are converted back to ints on
// load.
type sidecar struct {
	MetadataStore map[string]map[string]interface{} `json:"metadata_store"`
	IDToIndex     map[string]int                    `json:"id_to_index"`
	IndexToID     map[string]string                 `json:"index_to_id"`
	NextIndex     int                               `json:"next_index"`
	Dimension     int                               `json:"dimension"`
}

// Save writes the vectors as a little-endian binary blob and the mappings as
// a JSON sidecar.
func (x *Index) Save(vectorPath, metadataPath string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	buf := make([]byte, 16+len(x.vectors)*x.dimension*8)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(x.vectors)))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(x.dimension))
	off := 16
	for _, vec := range x.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
			off += 8
		}
	}
	if err := os.WriteFile(vectorPath, buf, 0644); err != nil {
		return fmt.Errorf("failed to write vector data: %w", err)
	}

	side := sidecar{
		MetadataStore: x.metadata,
		IDToIndex:     x.idToIndex,
		IndexToID:     make(map[string]string, len(x.indexToID)),
		NextIndex:     x.nextIndex,
		Dimension:     x.dimension,
	}
	for row, id := range x.indexToID {
		side.IndexToID[strconv.Itoa(row)] = id
	}

	data, err := json.MarshalIndent(side, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index metadata: %w", err)
	}
	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}
	return nil
}

// Load restores a saved index, replacing the current contents.
func (x *Index) Load(vectorPath, metadataPath string) error {
	buf, err := os.ReadFile(vectorPath)
	if err != nil {
		return fmt.Errorf("failed to read vector data: %w", err)
	}
	if len(buf) < 16 {
		return fmt.Errorf("vector data truncated: %d bytes", len(buf))
	}
	count := int(binary.LittleEndian.Uint64(buf[0:8]))
	dimension := int(binary.LittleEndian.Uint64(buf[8:16]))
	if len(buf) != 16+count*dimension*8 {
		return fmt.Errorf("vector data size mismatch: %d vectors of dimension %d in %d bytes", count, dimension, len(buf))
	}

	vectors := make([][]float64, count)
	off := 16
	for i := range vectors {
		vec := make([]float64, dimension)
		for j := range vec {
			vec[j] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off : off+8]))
			off += 8
		}
		vectors[i] = vec
	}

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return fmt.Errorf("failed to read index metadata: %w", err)
	}
	var side sidecar
	if err := json.Unmarshal(data, &side); err != nil {
		return fmt.Errorf("failed to unmarshal index metadata: %w", err)
	}
	if side.Dimension != dimension {
		return fmt.Errorf("dimension mismatch between vector data (%d) and metadata (%d)", dimension, side.Dimension)
	}

	indexToID := make(map[int]string, len(side.IndexToID))
	for key, id := range side.IndexToID {
		row, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid row key %q in index metadata: %w", key, err)
		}
		indexToID[row] = id
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimension != 0 && dimension != x.dimension {
		return fmt.Errorf("stored dimension %d does not match index dimension %d", dimension, x.dimension)
	}
	x.dimension = dimension
	x.vectors = vectors
	x.metadata = side.MetadataStore
	if x.metadata == nil {
		x.metadata = make(map[string]map[string]interface{})
	}
	x.idToIndex = side.IDToIndex
	if x.idToIndex == nil {
		x.idToIndex = make(map[string]int)
	}
	x.indexToID = indexToID
	x.nextIndex = side.NextIndex
	return nil
}
