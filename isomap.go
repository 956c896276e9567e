package scm

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/flywave/go3d/vec2"
)

// LoadIsomap loads the 2D texture coordinates generated by the isomap
// algorithm, one "x y" line per vertex, and rescales them to [0,1]x[0,1].
// The number of coordinates is not checked against any model.
func LoadIsomap(isomapPath string) ([]vec2.T, error) {
	data, err := readFile(isomapPath)
	if err != nil {
		return nil, err
	}
	coords, err := parseIsomap(data)
	if err != nil {
		return nil, withPath(err, isomapPath)
	}
	tracer().Debugf("loaded %d isomap coordinates from %s", len(coords), isomapPath)
	return coords, nil
}

func IsomapUnMarshal(rd io.Reader) ([]vec2.T, error) {
	data, err := readAll(rd)
	if err != nil {
		return nil, err
	}
	return parseIsomap(data)
}

func parseIsomap(data []byte) ([]vec2.T, error) {
	var xs, ys []float64
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, malformed(SECTION_ISOMAP, "line %d: expected x and y, got %q", line, sc.Text())
		}
		x, err := parseCoord(fields[0])
		if err != nil {
			return nil, malformed(SECTION_ISOMAP, "line %d: %w", line, err)
		}
		y, err := parseCoord(fields[1])
		if err != nil {
			return nil, malformed(SECTION_ISOMAP, "line %d: %w", line, err)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if err := sc.Err(); err != nil {
		return nil, malformed(SECTION_ISOMAP, "line %d: %w", line+1, err)
	}
	return rescaleToUnitSquare(xs, ys), nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// rescaleToUnitSquare min-max normalises each axis independently. An axis
// whose values are all equal maps to 0.
func rescaleToUnitSquare(xs, ys []float64) []vec2.T {
	minX, maxX := minMax(xs)
	minY, maxY := minMax(ys)
	coords := make([]vec2.T, len(xs))
	for i := range xs {
		coords[i] = vec2.T{
			float32(unitScale(xs[i], minX, maxX)),
			float32(unitScale(ys[i], minY, maxY)),
		}
	}
	return coords
}

func unitScale(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

func minMax(vs []float64) (float64, float64) {
	lo := math.MaxFloat64
	hi := -math.MaxFloat64
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
