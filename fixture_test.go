package scm

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeLittleByte(wt io.Writer, v interface{}) {
	binary.Write(wt, binary.LittleEndian, v)
}

// pcaFixture keeps the basis row-major; the encoders reorder as needed.
type pcaFixture struct {
	mean  []float64
	rows  int
	cols  int
	basis []float64
	eigen []float64
}

type levelFixture struct {
	vertexCount uint32
	shape       pcaFixture
	color       *pcaFixture
	colorFlag   *uint32
	triangles   [][3]uint32
}

type scmFixture struct {
	signature string
	version   uint32
	levels    []levelFixture
	landmarks []Landmark
	trailing  []byte
}

func writeVector(wt io.Writer, vs []float64) {
	writeLittleByte(wt, uint32(len(vs)))
	writeLittleByte(wt, vs)
}

func (f *scmFixture) bytes() []byte {
	var buf bytes.Buffer
	sig := f.signature
	if sig == "" {
		sig = SCM_SIGNATURE
	}
	buf.WriteString(sig)
	writeLittleByte(&buf, f.version)
	writeLittleByte(&buf, uint32(len(f.levels)))
	for _, lv := range f.levels {
		writeLittleByte(&buf, lv.vertexCount)
		writeVector(&buf, lv.shape.mean)
		writeLittleByte(&buf, uint32(lv.shape.rows))
		writeLittleByte(&buf, uint32(lv.shape.cols))
		writeLittleByte(&buf, lv.shape.basis)
		writeVector(&buf, lv.shape.eigen)
		flag := uint32(0)
		if lv.color != nil {
			flag = 1
		}
		if lv.colorFlag != nil {
			flag = *lv.colorFlag
		}
		writeLittleByte(&buf, flag)
		if lv.color != nil {
			writeVector(&buf, lv.color.mean)
			writeLittleByte(&buf, uint32(lv.color.rows))
			writeLittleByte(&buf, uint32(lv.color.cols))
			writeLittleByte(&buf, lv.color.basis)
			writeVector(&buf, lv.color.eigen)
		}
		writeLittleByte(&buf, uint32(len(lv.triangles)))
		for _, t := range lv.triangles {
			writeLittleByte(&buf, t)
		}
	}
	writeLittleByte(&buf, uint32(len(f.landmarks)))
	for _, lm := range f.landmarks {
		writeLittleByte(&buf, uint32(len(lm.Name)))
		buf.WriteString(lm.Name)
		writeLittleByte(&buf, lm.Vertex)
	}
	buf.Write(f.trailing)
	return buf.Bytes()
}

func colMajor(p pcaFixture) []float64 {
	out := make([]float64, 0, len(p.basis))
	for c := 0; c < p.cols; c++ {
		for r := 0; r < p.rows; r++ {
			out = append(out, p.basis[r*p.cols+c])
		}
	}
	return out
}

// cvsspBytes encodes the legacy Surrey layout. A nil color writes an empty
// color model.
func cvsspBytes(vertexCount uint32, tris [][3]uint32, shape pcaFixture, color *pcaFixture) []byte {
	var buf bytes.Buffer
	writeLittleByte(&buf, vertexCount)
	writeLittleByte(&buf, uint32(len(tris)))
	for _, t := range tris {
		writeLittleByte(&buf, t)
	}
	writePca := func(p pcaFixture) {
		writeLittleByte(&buf, uint32(p.cols))
		writeLittleByte(&buf, uint32(p.rows))
		writeLittleByte(&buf, colMajor(p))
		writeVector(&buf, p.mean)
		writeVector(&buf, p.eigen)
	}
	writePca(shape)
	if color != nil {
		writePca(*color)
	} else {
		writePca(pcaFixture{})
	}
	return buf.Bytes()
}

// unitBasis returns a rows×cols basis whose column i is the unit vector e_i.
func unitBasis(rows, cols int) []float64 {
	b := make([]float64, rows*cols)
	for i := 0; i < cols; i++ {
		b[i*cols+i] = 1
	}
	return b
}

func seq(n int, start, step float64) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = start + float64(i)*step
	}
	return vs
}

// minimalFixture: three vertices, a 9×1 unit basis, one eigenvalue, one
// triangle, no color and a single landmark.
func minimalFixture() *scmFixture {
	return &scmFixture{
		version: V1,
		levels: []levelFixture{
			{
				vertexCount: 3,
				shape: pcaFixture{
					mean:  []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
					rows:  9,
					cols:  1,
					basis: unitBasis(9, 1),
					eigen: []float64{2},
				},
				triangles: [][3]uint32{{0, 1, 2}},
			},
		},
		landmarks: []Landmark{{Name: "nose_tip", Vertex: 0}},
	}
}

// twoLevelFixture adds a four vertex level with a color model on top of
// the minimal one.
func twoLevelFixture() *scmFixture {
	f := minimalFixture()
	f.levels = append(f.levels, levelFixture{
		vertexCount: 4,
		shape: pcaFixture{
			mean:  []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			rows:  12,
			cols:  2,
			basis: unitBasis(12, 2),
			eigen: []float64{4, 1},
		},
		color: &pcaFixture{
			mean:  seq(12, 0.1, 0.05),
			rows:  12,
			cols:  1,
			basis: unitBasis(12, 1),
			eigen: []float64{0.5},
		},
		triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	})
	f.landmarks = append(f.landmarks, Landmark{Name: "chin", Vertex: 2})
	return f
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
