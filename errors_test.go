package scm

import (
	"errors"
	"io"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindMalformedFile, Path: "a.scm", Section: SECTION_MEAN_SHAPE, Err: errors.New("short")},
			"MalformedFile a.scm [mean_shape]: short"},
		{&Error{Kind: KindIO, Err: io.ErrUnexpectedEOF}, "IOError: unexpected EOF"},
		{&Error{Kind: KindFileNotFound, Path: "b.scm"}, "FileNotFound b.scm"},
		{&Error{Kind: ErrorKind(9)}, "ErrorKind(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := error(mismatch(SECTION_TEXCOORDS, "%d != %d", 1, 2))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch")
	}
	if errors.Is(err, ErrMalformedFile) {
		t.Errorf("mismatch must not match ErrMalformedFile")
	}

	cause := io.ErrUnexpectedEOF
	err = ioFailure(SECTION_SHAPE_BASIS, cause)
	if !errors.Is(err, ErrIO) || !errors.Is(err, cause) {
		t.Errorf("Expected both ErrIO and the cause, got %v", err)
	}
}

func TestWithPath(t *testing.T) {
	err := withPath(malformed(SECTION_LANDMARKS, "dup"), "face.scm")
	var e *Error
	if !errors.As(err, &e) || e.Path != "face.scm" {
		t.Fatalf("Expected the path to be set, got %v", err)
	}
	withPath(err, "other.scm")
	if e.Path != "face.scm" {
		t.Errorf("an existing path must not be replaced, got %s", e.Path)
	}
	plain := errors.New("plain")
	if withPath(plain, "x") != plain {
		t.Errorf("foreign errors must pass through")
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in   string
		want Layout
	}{
		{"", LayoutAuto},
		{"auto", LayoutAuto},
		{"Tagged", LayoutTagged},
		{"scmf", LayoutTagged},
		{" cvssp ", LayoutCVSSP},
		{"legacy", LayoutCVSSP},
		{"surrey", LayoutCVSSP},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLayout(tt.in)
			if err != nil {
				t.Fatalf("ParseLayout failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
	if _, err := ParseLayout("obj"); err == nil {
		t.Errorf("Expected an error for an unknown layout")
	}
}

func TestLoadOptionsValidate(t *testing.T) {
	if err := NewLoadOptions().validate(); err != nil {
		t.Errorf("default options rejected: %v", err)
	}
	if err := (LoadOptions{Layout: LayoutTagged, Level: -2}).validate(); err == nil {
		t.Errorf("Expected an error for level -2")
	}
	if err := (LoadOptions{Layout: Layout(7), Level: 0}).validate(); err == nil {
		t.Errorf("Expected an error for an unknown layout")
	}
	if LayoutCVSSP.String() != "cvssp" {
		t.Errorf("unexpected layout name %s", LayoutCVSSP)
	}
}
