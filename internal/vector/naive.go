package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

const backendNaive = "naive"

// naiveBackend is the dependency-free fallback: float64 brute force over an
// in-memory matrix. Query and rows are re-normalized defensively even though
// inputs are expected pre-normalized, so the dot product is the cosine
// similarity either way.
type naiveBackend struct {
	dim  int
	rows [][]float32
}

func newNaiveBackend(dim int) *naiveBackend {
	return &naiveBackend{dim: dim}
}

func (n *naiveBackend) name() string { return backendNaive }

func (n *naiveBackend) size() int { return len(n.rows) }

func (n *naiveBackend) add(vectors [][]float32) {
	for _, vec := range vectors {
		row := make([]float32, n.dim)
		copy(row, vec)
		n.rows = append(n.rows, row)
	}
}

// normEpsilon guards against division by zero for degenerate vectors without
// changing scores of unit vectors beyond float tolerance.
const normEpsilon = 1e-9

func (n *naiveBackend) search(query []float32, k int) ([]int, []float64) {
	var qn float64
	for _, v := range query {
		qn += float64(v) * float64(v)
	}
	qn = math.Sqrt(qn) + normEpsilon

	scores := make([]float64, len(n.rows))
	for i, row := range n.rows {
		var dot, rn float64
		for j := range row {
			dot += float64(query[j]) * float64(row[j])
			rn += float64(row[j]) * float64(row[j])
		}
		scores[i] = dot / (qn * (math.Sqrt(rn) + normEpsilon))
	}
	return topK(scores, k)
}

// save writes the raw float matrix dump: dim, row count, then row-major
// little-endian float32s.
func (n *naiveBackend) save(dir string) error {
	path := filepath.Join(dir, NaiveFilename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vector: create vector dump file: %w", err)
	}
	defer file.Close()
	header := []uint32{uint32(n.dim), uint32(len(n.rows))}
	if err := binary.Write(file, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("vector: write vector dump header: %w", err)
	}
	for _, row := range n.rows {
		if err := binary.Write(file, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("vector: write vector dump rows: %w", err)
		}
	}
	return nil
}

// load replaces the backend contents from dir. A missing file leaves an
// empty store.
func (n *naiveBackend) load(dir string) error {
	file, err := os.Open(filepath.Join(dir, NaiveFilename))
	if err != nil {
		if os.IsNotExist(err) {
			n.rows = nil
			return nil
		}
		return fmt.Errorf("vector: open vector dump file: %w", err)
	}
	defer file.Close()

	var header [2]uint32
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("vector: read vector dump header: %w", err)
	}
	dim, count := int(header[0]), int(header[1])
	if dim != n.dim {
		return fmt.Errorf("vector: vector dump has dimension %d, index expects %d", dim, n.dim)
	}
	rows := make([][]float32, count)
	for i := range rows {
		rows[i] = make([]float32, dim)
		if err := binary.Read(file, binary.LittleEndian, rows[i]); err != nil {
			return fmt.Errorf("vector: read vector dump rows: %w", err)
		}
	}
	n.rows = rows
	return nil
}

// topK returns the indices of the k highest scores in descending order, with
// ties resolved by ascending insertion order (stable), plus the scores in the
// same order.
func topK(scores []float64, k int) ([]int, []float64) {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}
	rows := make([]int, k)
	out := make([]float64, k)
	for i := 0; i < k; i++ {
		rows[i] = order[i]
		out[i] = scores[order[i]]
	}
	return rows, out
}
