// ABOUTME: Embedding vector BLOB codec for SQLite storage
// ABOUTME: Encodes float64 slices as little-endian byte sequences
package storage

import (
	"encoding/binary"
	"math"
)

// vectorToBlob encodes a vector as 8 little-endian bytes per component.
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector decodes a vector written by vectorToBlob.
func blobToVector(blob []byte) []float64 {
	vector := make([]float64, len(blob)/8)
	for i := range vector {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vector
}
