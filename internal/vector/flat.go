package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/viant/vec/search"
)

const backendFlat = "flat"

// flatFileMagic identifies the flat backend's serialized form.
var flatFileMagic = [4]byte{'H', 'K', 'F', 'L'}

const flatFileVersion = 1

var errFlatSelfCheck = errors.New("vector: flat backend self-check failed")

// flatBackend stores vectors as rows of a flat float32 matrix and scores
// queries with exact inner products, using the SIMD-accelerated kernels in
// viant/vec where the CPU supports them. Row magnitudes are kept alongside so
// the dot product can be recovered from the cosine distance the kernels
// expose.
type flatBackend struct {
	dim  int
	rows [][]float32
	mags []float32
}

// newFlatBackend probes the accelerated distance path against a scalar
// reference before committing to it. A divergence means the kernels cannot be
// trusted on this CPU and the index falls back to naive search.
func newFlatBackend(dim int) (*flatBackend, error) {
	a := []float32{1, 0, 0.5}
	b := []float32{0.5, 1, 0.25}
	got := flatInnerProduct(a, search.Float32s(a).Magnitude(), b, search.Float32s(b).Magnitude())
	const want = 1*0.5 + 0*1 + 0.5*0.25
	if math.Abs(float64(got)-want) > 1e-4 {
		return nil, errFlatSelfCheck
	}
	return &flatBackend{dim: dim}, nil
}

// flatInnerProduct recovers the exact dot product from the cosine distance:
// dot = (1 - dist) * |a| * |b|. Zero-magnitude operands dot to zero.
// CosineDistance is the portable entry point of the kernel library; the
// magnitude-carrying variants are only exported on arm64.
func flatInnerProduct(a []float32, ma float32, b []float32, mb float32) float32 {
	if ma == 0 || mb == 0 {
		return 0
	}
	dist := search.Float32s(a).CosineDistance(b)
	return (1 - dist) * ma * mb
}

func (f *flatBackend) name() string { return backendFlat }

func (f *flatBackend) size() int { return len(f.rows) }

func (f *flatBackend) add(vectors [][]float32) {
	for _, vec := range vectors {
		row := make([]float32, f.dim)
		copy(row, vec)
		f.rows = append(f.rows, row)
		f.mags = append(f.mags, search.Float32s(row).Magnitude())
	}
}

func (f *flatBackend) search(query []float32, k int) ([]int, []float64) {
	qm := search.Float32s(query).Magnitude()
	scores := make([]float64, len(f.rows))
	for i, row := range f.rows {
		scores[i] = float64(flatInnerProduct(query, qm, row, f.mags[i]))
	}
	return topK(scores, k)
}

// save writes an opaque serialized form: magic, version, dim, row count, the
// row-major matrix, then the precomputed magnitudes.
func (f *flatBackend) save(dir string) error {
	path := filepath.Join(dir, FlatFilename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vector: create flat index file: %w", err)
	}
	defer file.Close()
	if _, err := file.Write(flatFileMagic[:]); err != nil {
		return fmt.Errorf("vector: write flat index header: %w", err)
	}
	header := []uint32{flatFileVersion, uint32(f.dim), uint32(len(f.rows))}
	if err := binary.Write(file, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("vector: write flat index header: %w", err)
	}
	for _, row := range f.rows {
		if err := binary.Write(file, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("vector: write flat index rows: %w", err)
		}
	}
	if err := binary.Write(file, binary.LittleEndian, f.mags); err != nil {
		return fmt.Errorf("vector: write flat index magnitudes: %w", err)
	}
	return nil
}

// load replaces the backend contents from dir. A missing file leaves an
// empty store.
func (f *flatBackend) load(dir string) error {
	file, err := os.Open(filepath.Join(dir, FlatFilename))
	if err != nil {
		if os.IsNotExist(err) {
			f.rows, f.mags = nil, nil
			return nil
		}
		return fmt.Errorf("vector: open flat index file: %w", err)
	}
	defer file.Close()

	var magic [4]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil {
		return fmt.Errorf("vector: read flat index header: %w", err)
	}
	if magic != flatFileMagic {
		return fmt.Errorf("vector: flat index file has wrong magic %q", magic[:])
	}
	var header [3]uint32
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("vector: read flat index header: %w", err)
	}
	version, dim, n := header[0], int(header[1]), int(header[2])
	if version != flatFileVersion {
		return fmt.Errorf("vector: unsupported flat index version %d", version)
	}
	if dim != f.dim {
		return fmt.Errorf("vector: flat index file has dimension %d, index expects %d", dim, f.dim)
	}
	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = make([]float32, dim)
		if err := binary.Read(file, binary.LittleEndian, rows[i]); err != nil {
			return fmt.Errorf("vector: read flat index rows: %w", err)
		}
	}
	mags := make([]float32, n)
	if err := binary.Read(file, binary.LittleEndian, mags); err != nil {
		return fmt.Errorf("vector: read flat index magnitudes: %w", err)
	}
	f.rows, f.mags = rows, mags
	return nil
}
