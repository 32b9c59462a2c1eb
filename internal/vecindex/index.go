package vecindex

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Result is a single nearest-neighbor hit. ChunkID is the 1-based ordinal of
// the matched chunk; Distance is squared Euclidean distance to the query.
type Result struct {
	ChunkID  int
	Distance float64
}

// Index is a flat L2 nearest-neighbor index. All vectors are inserted once
// at build time, in chunk order; after that the index is read-only and safe
// for concurrent searches.
type Index struct {
	dim     int
	vectors [][]float64
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, errors.New("index dimension must be positive")
	}
	return &Index{dim: dim}, nil
}

// Dimension returns the vector dimensionality.
func (ix *Index) Dimension() int { return ix.dim }

// Len returns the number of indexed vectors.
func (ix *Index) Len() int { return len(ix.vectors) }

// Add appends vectors in chunk order. Row i corresponds to chunk id i+1.
func (ix *Index) Add(vectors [][]float64) error {
	for _, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(v), ix.dim)
		}
	}
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns the k nearest chunk ids to the query vector, ordered by
// ascending distance with ties broken by ascending chunk id.
func (ix *Index) Search(query []float64, k int) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dim)
	}
	if k <= 0 || len(ix.vectors) == 0 {
		return nil, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	results := make([]Result, len(ix.vectors))
	for i, v := range ix.vectors {
		results[i] = Result{ChunkID: i + 1, Distance: sqL2(v, query)}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	return results[:k], nil
}

func sqL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// indexState is the gob-serialized form of the index.
type indexState struct {
	Dim     int
	Vectors [][]float64
}

// Encode writes the index to w.
func (ix *Index) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(indexState{Dim: ix.dim, Vectors: ix.vectors})
}

// Decode reads an index previously written with Encode.
func Decode(r io.Reader) (*Index, error) {
	var st indexState
	if err := gob.NewDecoder(r).Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if st.Dim <= 0 {
		return nil, errors.New("corrupt index: non-positive dimension")
	}
	for _, v := range st.Vectors {
		if len(v) != st.Dim {
			return nil, errors.New("corrupt index: vector dimension mismatch")
		}
	}
	return &Index{dim: st.Dim, vectors: st.Vectors}, nil
}
