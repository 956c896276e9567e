package scm

import (
	"io"

	"gonum.org/v1/gonum/mat"
)

// LoadScmModel loads a Morphable Model from a binary .scm file.
//
// Multi-resolution files return the highest resolution level. The
// landmark to vertex mapping is the one of the lowest level: finer levels
// are subdivisions of it, so its indices keep addressing the same points.
// That only holds for landmarks defined on the lowest level; landmarks
// added on a finer level are not detected.
//
// The PCA basis is returned as stored, i.e. orthonormal and not scaled by
// the eigenvalues.
//
// isomapPath may be empty. Otherwise the isomap is loaded with LoadIsomap
// and attached as texture coordinates.
func LoadScmModel(modelPath, isomapPath string) (*MorphableModel, error) {
	opts := NewLoadOptions()
	opts.IsomapPath = isomapPath
	return LoadScmModelWithOptions(modelPath, opts)
}

func LoadScmModelWithOptions(modelPath string, opts LoadOptions) (*MorphableModel, error) {
	data, err := readFile(modelPath)
	if err != nil {
		return nil, err
	}
	mdl, err := unmarshalScm(data, opts)
	if err != nil {
		return nil, withPath(err, modelPath)
	}
	if opts.IsomapPath != "" {
		coords, err := LoadIsomap(opts.IsomapPath)
		if err != nil {
			return nil, err
		}
		if err := mdl.attachTexCoords(coords); err != nil {
			return nil, withPath(err, opts.IsomapPath)
		}
	}
	tracer().Debugf("loaded %s: %d vertices, %d shape components, %d triangles, %d landmarks",
		modelPath, mdl.VertexCount(), mdl.Shape.NumComponents(), len(mdl.Triangles), len(mdl.Landmarks))
	return mdl, nil
}

// ScmModelUnMarshal reads a model from rd. opts.IsomapPath is ignored.
func ScmModelUnMarshal(rd io.Reader, opts LoadOptions) (*MorphableModel, error) {
	data, err := readAll(rd)
	if err != nil {
		return nil, err
	}
	return unmarshalScm(data, opts)
}

func unmarshalScm(data []byte, opts LoadOptions) (*MorphableModel, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	rd := newRecordReader(data)
	var mdl *MorphableModel
	var err error
	switch detectLayout(rd, opts.Layout) {
	case LayoutTagged:
		mdl, err = readTagged(rd, opts.Level)
	default:
		mdl, err = readCVSSP(rd, opts.Level)
	}
	if err != nil {
		return nil, err
	}
	if err := rd.expectEnd(); err != nil {
		return nil, err
	}
	if err := mdl.Validate(); err != nil {
		return nil, err
	}
	return mdl, nil
}

func detectLayout(rd *recordReader, want Layout) Layout {
	if want != LayoutAuto {
		return want
	}
	if string(rd.peek(len(SCM_SIGNATURE))) == SCM_SIGNATURE {
		return LayoutTagged
	}
	return LayoutCVSSP
}

func readTagged(rd *recordReader, want int) (*MorphableModel, error) {
	header, err := parseSchema(rd, taggedHeaderSchema)
	if err != nil {
		return nil, err
	}
	version := header[SECTION_VERSION].Value
	if version != V1 {
		return nil, malformed(SECTION_VERSION, "unsupported version %d", version)
	}
	levelCount := int(header[SECTION_LEVEL_COUNT].Value)
	if levelCount == 0 {
		return nil, malformed(SECTION_LEVEL_COUNT, "no resolution levels")
	}
	selected, err := selectLevel(want, levelCount)
	if err != nil {
		return nil, err
	}

	var picked sectionSet
	var levels []int
	for i := 0; i < levelCount; i++ {
		set, err := parseSchema(rd, taggedLevelSchema)
		if err != nil {
			return nil, err
		}
		vc := int(set[SECTION_VERTEX_COUNT].Value)
		if len(levels) > 0 && vc < levels[len(levels)-1] {
			return nil, malformed(SECTION_VERTEX_COUNT, "level %d has %d vertices, fewer than level %d", i, vc, i-1)
		}
		if err := checkTriangles(set[SECTION_TRIANGLES].Triangles, vc); err != nil {
			return nil, err
		}
		levels = append(levels, vc)
		if i == selected {
			picked = set
		}
	}

	trailer, err := parseSchema(rd, taggedTrailerSchema)
	if err != nil {
		return nil, err
	}
	landmarks := make(map[string]uint32, len(trailer[SECTION_LANDMARKS].Landmarks))
	for _, lm := range trailer[SECTION_LANDMARKS].Landmarks {
		landmarks[lm.Name] = lm.Vertex
	}
	if err := checkLandmarks(landmarks, levels[0]); err != nil {
		return nil, err
	}

	mdl, err := buildModel(picked, picked.has(SECTION_COLOR_BASIS))
	if err != nil {
		return nil, err
	}
	mdl.Landmarks = landmarks
	mdl.Levels = levels
	mdl.Level = selected
	mdl.Layout = LayoutTagged
	mdl.Version = version
	return mdl, nil
}

func readCVSSP(rd *recordReader, want int) (*MorphableModel, error) {
	if want > 0 {
		return nil, malformed(SECTION_LEVEL_COUNT, "level %d requested, cvssp files have a single level", want)
	}
	set, err := parseSchema(rd, cvsspSchema)
	if err != nil {
		return nil, err
	}
	colorBasis := set[SECTION_COLOR_BASIS]
	if colorBasis.Rows == 0 && colorBasis.Cols != 0 {
		return nil, malformed(SECTION_COLOR_BASIS, "%d color components without color dimensions", colorBasis.Cols)
	}
	mdl, err := buildModel(set, colorBasis.Rows > 0)
	if err != nil {
		return nil, err
	}
	mdl.Landmarks = map[string]uint32{}
	mdl.Levels = []int{int(set[SECTION_VERTEX_COUNT].Value)}
	mdl.Layout = LayoutCVSSP
	return mdl, nil
}

func selectLevel(want, count int) (int, error) {
	if want == LevelHighest {
		return count - 1, nil
	}
	if want >= count {
		return 0, malformed(SECTION_LEVEL_COUNT, "level %d requested, file has %d", want, count)
	}
	return want, nil
}

func buildModel(set sectionSet, hasColor bool) (*MorphableModel, error) {
	shape, err := buildPca(set, SECTION_MEAN_SHAPE, SECTION_SHAPE_BASIS, SECTION_SHAPE_EIGEN)
	if err != nil {
		return nil, err
	}
	mdl := &MorphableModel{Shape: shape, Triangles: set[SECTION_TRIANGLES].Triangles}
	if hasColor {
		if mdl.Color, err = buildPca(set, SECTION_MEAN_COLOR, SECTION_COLOR_BASIS, SECTION_COLOR_EIGEN); err != nil {
			return nil, err
		}
	}
	return mdl, nil
}

func buildPca(set sectionSet, meanName, basisName, eigenName string) (*PcaModel, error) {
	mean, basis, eigen := set[meanName], set[basisName], set[eigenName]
	if basis.Rows == 0 || basis.Cols == 0 {
		return nil, malformed(basisName, "empty %dx%d basis", basis.Rows, basis.Cols)
	}
	pca, err := NewPcaModel(
		mat.NewVecDense(len(mean.Floats), mean.Floats),
		mat.NewDense(basis.Rows, basis.Cols, basis.Floats),
		mat.NewVecDense(len(eigen.Floats), eigen.Floats),
	)
	if err != nil {
		return nil, malformed(basisName, "%w", err)
	}
	return pca, nil
}
