package scm

const SCM_SIGNATURE string = "SCMF"
const SCMEXT string = ".scm"
const ISOMAPEXT string = ".isomap"
const V1 uint32 = 1

// LevelHighest selects the most detailed resolution level.
const LevelHighest = -1

const (
	SECTION_SIGNATURE      = "signature"
	SECTION_VERSION        = "version"
	SECTION_LEVEL_COUNT    = "level_count"
	SECTION_VERTEX_COUNT   = "vertex_count"
	SECTION_MEAN_SHAPE     = "mean_shape"
	SECTION_SHAPE_BASIS    = "shape_basis"
	SECTION_SHAPE_EIGEN    = "shape_eigenvalues"
	SECTION_COLOR_FLAG     = "color_flag"
	SECTION_MEAN_COLOR     = "mean_color"
	SECTION_COLOR_BASIS    = "color_basis"
	SECTION_COLOR_EIGEN    = "color_eigenvalues"
	SECTION_TRIANGLE_COUNT = "triangle_count"
	SECTION_TRIANGLES      = "triangles"
	SECTION_LANDMARKS      = "landmarks"
	SECTION_TRAILER        = "trailer"
	SECTION_ISOMAP         = "isomap"
	SECTION_TEXCOORDS      = "texcoords"
)

// counts recorded while parsing, referenced by later sections
const (
	COUNT_SHAPE_DIMS       = "shape_dims"
	COUNT_SHAPE_COMPONENTS = "shape_components"
	COUNT_COLOR_DIMS       = "color_dims"
	COUNT_COLOR_COMPONENTS = "color_components"
)

// Layout 文件布局
type Layout int

const (
	LayoutAuto Layout = iota
	LayoutTagged
	LayoutCVSSP
)

// Landmark 特征点名称到顶点索引
type Landmark struct {
	Name   string `json:"name"`
	Vertex uint32 `json:"vertex"`
}
