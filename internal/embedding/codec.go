package embedding

import (
	"encoding/binary"
	"math"
)

// Embeddings are persisted as little-endian float32 blobs, 4 bytes per
// dimension. Both stores share this encoding.

// EncodeVector serializes an embedding for storage.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector deserializes a stored embedding. Returns nil for blobs that
// are not a whole number of float32s.
func DecodeVector(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
