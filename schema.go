package scm

type sectionKind int

const (
	sectionSignature sectionKind = iota
	sectionScalar
	sectionFlag
	sectionVector
	sectionMatrix
	sectionTriangles
	sectionLandmarks
)

// dimRule tells where one dimension of a section comes from.
type dimRule struct {
	// Prefixed dimensions are read from a uint32 in front of the data.
	// Otherwise the dimension is Ref·Mul.
	Prefixed bool
	// Ref names a previously parsed count; a prefixed dimension must equal
	// Ref·Mul.
	Ref    string
	Mul    int
	ZeroOK bool
	Save   string
}

// sectionDesc 段描述
type sectionDesc struct {
	Name      string
	Kind      sectionKind
	Rows      dimRule
	Cols      dimRule
	ColsFirst bool
	ColMajor  bool
	// Gate names a flag section; the section is absent when the flag is 0.
	Gate string
}

type schema []sectionDesc

// section holds the decoded payload of one sectionDesc. Matrices are
// always row-major here, whatever the file order was.
type section struct {
	Name      string
	Value     uint32
	Rows      int
	Cols      int
	Floats    []float64
	Triangles [][3]uint32
	Landmarks []Landmark
}

type sectionSet map[string]*section

func (s sectionSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

var taggedHeaderSchema = schema{
	{Name: SECTION_SIGNATURE, Kind: sectionSignature},
	{Name: SECTION_VERSION, Kind: sectionScalar},
	{Name: SECTION_LEVEL_COUNT, Kind: sectionScalar},
}

var taggedLevelSchema = schema{
	{Name: SECTION_VERTEX_COUNT, Kind: sectionScalar},
	{Name: SECTION_MEAN_SHAPE, Kind: sectionVector,
		Rows: dimRule{Prefixed: true, Ref: SECTION_VERTEX_COUNT, Mul: 3}},
	{Name: SECTION_SHAPE_BASIS, Kind: sectionMatrix,
		Rows: dimRule{Prefixed: true, Ref: SECTION_VERTEX_COUNT, Mul: 3, Save: COUNT_SHAPE_DIMS},
		Cols: dimRule{Prefixed: true, Save: COUNT_SHAPE_COMPONENTS}},
	{Name: SECTION_SHAPE_EIGEN, Kind: sectionVector,
		Rows: dimRule{Prefixed: true, Ref: COUNT_SHAPE_COMPONENTS}},
	{Name: SECTION_COLOR_FLAG, Kind: sectionFlag},
	{Name: SECTION_MEAN_COLOR, Kind: sectionVector, Gate: SECTION_COLOR_FLAG,
		Rows: dimRule{Prefixed: true, Ref: SECTION_VERTEX_COUNT, Mul: 3}},
	{Name: SECTION_COLOR_BASIS, Kind: sectionMatrix, Gate: SECTION_COLOR_FLAG,
		Rows: dimRule{Prefixed: true, Ref: SECTION_VERTEX_COUNT, Mul: 3, Save: COUNT_COLOR_DIMS},
		Cols: dimRule{Prefixed: true, Save: COUNT_COLOR_COMPONENTS}},
	{Name: SECTION_COLOR_EIGEN, Kind: sectionVector, Gate: SECTION_COLOR_FLAG,
		Rows: dimRule{Prefixed: true, Ref: COUNT_COLOR_COMPONENTS}},
	{Name: SECTION_TRIANGLES, Kind: sectionTriangles,
		Rows: dimRule{Prefixed: true}},
}

var taggedTrailerSchema = schema{
	{Name: SECTION_LANDMARKS, Kind: sectionLandmarks, Rows: dimRule{Prefixed: true}},
}

// cvsspSchema is the single-level layout of the legacy Surrey files.
var cvsspSchema = schema{
	{Name: SECTION_VERTEX_COUNT, Kind: sectionScalar},
	{Name: SECTION_TRIANGLE_COUNT, Kind: sectionScalar},
	{Name: SECTION_TRIANGLES, Kind: sectionTriangles,
		Rows: dimRule{Ref: SECTION_TRIANGLE_COUNT}},
	{Name: SECTION_SHAPE_BASIS, Kind: sectionMatrix, ColsFirst: true, ColMajor: true,
		Rows: dimRule{Prefixed: true, Ref: SECTION_VERTEX_COUNT, Mul: 3, Save: COUNT_SHAPE_DIMS},
		Cols: dimRule{Prefixed: true, Save: COUNT_SHAPE_COMPONENTS}},
	{Name: SECTION_MEAN_SHAPE, Kind: sectionVector,
		Rows: dimRule{Prefixed: true, Ref: COUNT_SHAPE_DIMS}},
	{Name: SECTION_SHAPE_EIGEN, Kind: sectionVector,
		Rows: dimRule{Prefixed: true, Ref: COUNT_SHAPE_COMPONENTS}},
	{Name: SECTION_COLOR_BASIS, Kind: sectionMatrix, ColsFirst: true, ColMajor: true,
		Rows: dimRule{Prefixed: true, Ref: SECTION_VERTEX_COUNT, Mul: 3, ZeroOK: true, Save: COUNT_COLOR_DIMS},
		Cols: dimRule{Prefixed: true, Save: COUNT_COLOR_COMPONENTS}},
	{Name: SECTION_MEAN_COLOR, Kind: sectionVector,
		Rows: dimRule{Prefixed: true, Ref: COUNT_COLOR_DIMS}},
	{Name: SECTION_COLOR_EIGEN, Kind: sectionVector,
		Rows: dimRule{Prefixed: true, Ref: COUNT_COLOR_COMPONENTS}},
}

type schemaParser struct {
	rd     *recordReader
	counts map[string]int
}

// parseSchema decodes the sections of sc in order. Counts are scoped to
// one call, so a level schema can be parsed repeatedly.
func parseSchema(rd *recordReader, sc schema) (sectionSet, error) {
	p := &schemaParser{rd: rd, counts: make(map[string]int)}
	set := make(sectionSet, len(sc))
	for _, desc := range sc {
		if desc.Gate != "" && p.counts[desc.Gate] == 0 {
			continue
		}
		sec, err := p.parseSection(desc)
		if err != nil {
			return nil, err
		}
		set[desc.Name] = sec
	}
	return set, nil
}

func (p *schemaParser) parseSection(desc sectionDesc) (*section, error) {
	sec := &section{Name: desc.Name}
	switch desc.Kind {
	case sectionSignature:
		sig, err := p.rd.readBytes(desc.Name, len(SCM_SIGNATURE))
		if err != nil {
			return nil, err
		}
		if string(sig) != SCM_SIGNATURE {
			return nil, malformed(desc.Name, "bad signature %q", sig)
		}
	case sectionScalar, sectionFlag:
		v, err := p.rd.readUint32(desc.Name)
		if err != nil {
			return nil, err
		}
		if desc.Kind == sectionFlag && v > 1 {
			return nil, malformed(desc.Name, "flag value %d is neither 0 nor 1", v)
		}
		sec.Value = v
		p.counts[desc.Name] = int(v)
	case sectionVector:
		n, err := p.dim(desc.Name, desc.Rows)
		if err != nil {
			return nil, err
		}
		sec.Rows, sec.Cols = n, 1
		if sec.Floats, err = p.rd.readFloat64s(desc.Name, n); err != nil {
			return nil, err
		}
	case sectionMatrix:
		if err := p.parseMatrix(desc, sec); err != nil {
			return nil, err
		}
	case sectionTriangles:
		n, err := p.dim(desc.Name, desc.Rows)
		if err != nil {
			return nil, err
		}
		idx, err := p.rd.readUint32s(desc.Name, n*3)
		if err != nil {
			return nil, err
		}
		sec.Rows, sec.Cols = n, 3
		sec.Triangles = make([][3]uint32, n)
		for i := range sec.Triangles {
			sec.Triangles[i] = [3]uint32{idx[i*3], idx[i*3+1], idx[i*3+2]}
		}
	case sectionLandmarks:
		if err := p.parseLandmarks(desc, sec); err != nil {
			return nil, err
		}
	default:
		return nil, malformed(desc.Name, "unknown section kind %d", desc.Kind)
	}
	return sec, nil
}

func (p *schemaParser) parseMatrix(desc sectionDesc, sec *section) error {
	var rows, cols int
	var err error
	if desc.ColsFirst {
		if cols, err = p.dim(desc.Name, desc.Cols); err != nil {
			return err
		}
		if rows, err = p.dim(desc.Name, desc.Rows); err != nil {
			return err
		}
	} else {
		if rows, err = p.dim(desc.Name, desc.Rows); err != nil {
			return err
		}
		if cols, err = p.dim(desc.Name, desc.Cols); err != nil {
			return err
		}
	}
	if rows > 0 && cols > 0 && uint64(rows) > uint64(p.rd.remaining())/sizeFloat64/uint64(cols) {
		return malformed(desc.Name, "declares a %dx%d matrix, only %d bytes left", rows, cols, p.rd.remaining())
	}
	tracer().Debugf("loading %s with %d rows and %d cols", desc.Name, rows, cols)
	data, err := p.rd.readFloat64s(desc.Name, rows*cols)
	if err != nil {
		return err
	}
	if desc.ColMajor {
		data = transpose(data, rows, cols)
	}
	sec.Rows, sec.Cols, sec.Floats = rows, cols, data
	return nil
}

func (p *schemaParser) parseLandmarks(desc sectionDesc, sec *section) error {
	n, err := p.dim(desc.Name, desc.Rows)
	if err != nil {
		return err
	}
	// every entry carries at least a name length and a vertex index
	if err := p.rd.need(desc.Name, uint64(n), 2*sizeUint32); err != nil {
		return err
	}
	seen := make(map[string]bool, n)
	sec.Landmarks = make([]Landmark, 0, n)
	for i := 0; i < n; i++ {
		nameLen, err := p.rd.readUint32(desc.Name)
		if err != nil {
			return err
		}
		if nameLen == 0 {
			return malformed(desc.Name, "landmark %d has an empty name", i)
		}
		name, err := p.rd.readBytes(desc.Name, int(nameLen))
		if err != nil {
			return err
		}
		vertex, err := p.rd.readUint32(desc.Name)
		if err != nil {
			return err
		}
		if seen[string(name)] {
			return malformed(desc.Name, "duplicate landmark %q", name)
		}
		seen[string(name)] = true
		sec.Landmarks = append(sec.Landmarks, Landmark{Name: string(name), Vertex: vertex})
	}
	sec.Rows = n
	return nil
}

func (p *schemaParser) dim(name string, rule dimRule) (int, error) {
	var n int
	if rule.Prefixed {
		v, err := p.rd.readUint32(name)
		if err != nil {
			return 0, err
		}
		n = int(v)
		if rule.Ref != "" && !(rule.ZeroOK && n == 0) {
			want, err := p.ref(name, rule)
			if err != nil {
				return 0, err
			}
			if n != want {
				return 0, malformed(name, "declares %d, expected %d from %s", n, want, rule.Ref)
			}
		}
	} else {
		want, err := p.ref(name, rule)
		if err != nil {
			return 0, err
		}
		n = want
	}
	if rule.Save != "" {
		p.counts[rule.Save] = n
	}
	return n, nil
}

func (p *schemaParser) ref(name string, rule dimRule) (int, error) {
	v, ok := p.counts[rule.Ref]
	if !ok {
		return 0, malformed(name, "count %q is not known yet", rule.Ref)
	}
	mul := rule.Mul
	if mul == 0 {
		mul = 1
	}
	return v * mul, nil
}

// transpose turns column-major rows×cols data into row-major order.
func transpose(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = data[c*rows+r]
		}
	}
	return out
}
