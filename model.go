package scm

import (
	"fmt"
	"math"
	"sort"

	dvec3 "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec2"
	"gonum.org/v1/gonum/mat"
)

// MorphableModel 形变模型
//
// Triangles and the PCA models describe the selected resolution level.
// Landmarks index the lowest level; because finer levels are subdivisions
// of coarser ones, those indices stay valid at every level.
type MorphableModel struct {
	Shape     *PcaModel         `json:"-"`
	Color     *PcaModel         `json:"-"`
	Triangles [][3]uint32       `json:"triangles"`
	Landmarks map[string]uint32 `json:"landmarks,omitempty"`
	TexCoords []vec2.T          `json:"texCoords,omitempty"`
	Levels    []int             `json:"levels"`
	Level     int               `json:"level"`
	Layout    Layout            `json:"layout"`
	Version   uint32            `json:"version"`
}

func (m *MorphableModel) VertexCount() int {
	if m.Shape == nil {
		return 0
	}
	return m.Shape.VertexCount()
}

func (m *MorphableModel) HasColorModel() bool {
	return m.Color != nil
}

func (m *MorphableModel) HasTexCoords() bool {
	return len(m.TexCoords) > 0
}

func (m *MorphableModel) LandmarkVertex(name string) (int, bool) {
	v, ok := m.Landmarks[name]
	return int(v), ok
}

func (m *MorphableModel) LandmarkNames() []string {
	names := make([]string, 0, len(m.Landmarks))
	for n := range m.Landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *MorphableModel) MeanVertices() []dvec3.T {
	return m.Shape.meanVertices()
}

// MeanColors returns nil when the model has no color model.
func (m *MorphableModel) MeanColors() []dvec3.T {
	if m.Color == nil {
		return nil
	}
	return m.Color.meanVertices()
}

func (m *MorphableModel) BoundingBox() dvec3.Box {
	minX := math.MaxFloat64
	minY := math.MaxFloat64
	minZ := math.MaxFloat64
	maxX := -math.MaxFloat64
	maxY := -math.MaxFloat64
	maxZ := -math.MaxFloat64
	for _, v := range m.MeanVertices() {
		minX = math.Min(minX, v[0])
		minY = math.Min(minY, v[1])
		minZ = math.Min(minZ, v[2])

		maxX = math.Max(maxX, v[0])
		maxY = math.Max(maxY, v[1])
		maxZ = math.Max(maxZ, v[2])
	}
	return dvec3.Box{Min: dvec3.T{minX, minY, minZ}, Max: dvec3.T{maxX, maxY, maxZ}}
}

// DrawSample draws a shape and, when the model has one, a color instance.
// color is nil for models without a color model.
func (m *MorphableModel) DrawSample(shapeCoeffs, colorCoeffs []float64) (shape, color *mat.VecDense, err error) {
	shape, err = m.Shape.DrawSample(shapeCoeffs)
	if err != nil {
		return nil, nil, fmt.Errorf("shape: %w", err)
	}
	if m.Color == nil {
		if len(colorCoeffs) > 0 {
			return nil, nil, fmt.Errorf("color: model has no color model")
		}
		return shape, nil, nil
	}
	color, err = m.Color.DrawSample(colorCoeffs)
	if err != nil {
		return nil, nil, fmt.Errorf("color: %w", err)
	}
	return shape, color, nil
}

// Validate checks the structural invariants of the model.
func (m *MorphableModel) Validate() error {
	if m.Shape == nil {
		return malformed(SECTION_SHAPE_BASIS, "model has no shape model")
	}
	vc := m.VertexCount()
	if m.Shape.Eigenvalues().Len() != m.Shape.NumComponents() {
		return malformed(SECTION_SHAPE_EIGEN, "%d eigenvalues for %d components", m.Shape.Eigenvalues().Len(), m.Shape.NumComponents())
	}
	if m.Color != nil && m.Color.VertexCount() != vc {
		return malformed(SECTION_COLOR_BASIS, "color model has %d vertices, shape model %d", m.Color.VertexCount(), vc)
	}
	if err := checkTriangles(m.Triangles, vc); err != nil {
		return err
	}
	if len(m.TexCoords) != 0 && len(m.TexCoords) != vc {
		return mismatch(SECTION_TEXCOORDS, "%d texture coordinates for %d vertices", len(m.TexCoords), vc)
	}
	lowest := vc
	if len(m.Levels) > 0 {
		lowest = m.Levels[0]
	}
	return checkLandmarks(m.Landmarks, lowest)
}

func (m *MorphableModel) attachTexCoords(coords []vec2.T) error {
	if len(coords) != m.VertexCount() {
		return mismatch(SECTION_TEXCOORDS, "isomap has %d coordinates, model has %d vertices", len(coords), m.VertexCount())
	}
	m.TexCoords = coords
	return nil
}

func checkTriangles(tris [][3]uint32, vertexCount int) error {
	for i, t := range tris {
		for _, v := range t {
			if int(v) >= vertexCount {
				return malformed(SECTION_TRIANGLES, "triangle %d references vertex %d of %d", i, v, vertexCount)
			}
		}
	}
	return nil
}

// checkLandmarks asserts every landmark addresses a vertex of the lowest
// resolution level.
func checkLandmarks(lms map[string]uint32, lowestVertexCount int) error {
	for name, v := range lms {
		if int(v) >= lowestVertexCount {
			return malformed(SECTION_LANDMARKS, "landmark %q maps to vertex %d, lowest level has %d vertices", name, v, lowestVertexCount)
		}
	}
	return nil
}
