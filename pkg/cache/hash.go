package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/drainflow/pkg/grid"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashGrid hashes the shape, sentinel and values of a float grid. No-value
// cells hash the same whatever they hold.
func HashGrid(g grid.Reader[float64]) string {
	h := sha256.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(uint64(g.Rows()))
	write(uint64(g.Cols()))
	write(math.Float64bits(g.NoValue()))
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if g.IsNoValue(row, col) {
				write(math.Float64bits(math.NaN()))
				continue
			}
			write(math.Float64bits(g.At(row, col)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
