package scm

import (
	"fmt"
	"strings"
)

// LoadOptions 加载选项
type LoadOptions struct {
	// Layout forces a file layout; LayoutAuto sniffs the signature.
	Layout Layout
	// Level is the index of the resolution level to return, lowest first,
	// or LevelHighest.
	Level int
	// IsomapPath, when not empty, is loaded and attached as TexCoords.
	IsomapPath string
}

func NewLoadOptions() LoadOptions {
	return LoadOptions{Layout: LayoutAuto, Level: LevelHighest}
}

func (l Layout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutTagged:
		return "tagged"
	case LayoutCVSSP:
		return "cvssp"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LayoutAuto, nil
	case "tagged", "scmf":
		return LayoutTagged, nil
	case "cvssp", "legacy", "surrey":
		return LayoutCVSSP, nil
	}
	return LayoutAuto, fmt.Errorf("unknown scm layout %q", s)
}

func (o LoadOptions) validate() error {
	if o.Level < LevelHighest {
		return fmt.Errorf("invalid resolution level %d", o.Level)
	}
	switch o.Layout {
	case LayoutAuto, LayoutTagged, LayoutCVSSP:
		return nil
	}
	return fmt.Errorf("invalid layout %v", o.Layout)
}
