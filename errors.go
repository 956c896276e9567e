package scm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a load failure.
type ErrorKind int

const (
	KindFileNotFound ErrorKind = iota + 1
	KindIO
	KindMalformedFile
	KindDimensionMismatch
)

var (
	ErrFileNotFound      = errors.New("scm: file not found")
	ErrIO                = errors.New("scm: io error")
	ErrMalformedFile     = errors.New("scm: malformed file")
	ErrDimensionMismatch = errors.New("scm: dimension mismatch")
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileNotFound:
		return "FileNotFound"
	case KindIO:
		return "IOError"
	case KindMalformedFile:
		return "MalformedFile"
	case KindDimensionMismatch:
		return "DimensionMismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindFileNotFound:
		return ErrFileNotFound
	case KindIO:
		return ErrIO
	case KindMalformedFile:
		return ErrMalformedFile
	case KindDimensionMismatch:
		return ErrDimensionMismatch
	}
	return nil
}

// Error is returned by every loader in this package. Path is empty when
// the input was a plain reader.
type Error struct {
	Kind    ErrorKind
	Path    string
	Section string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Section != "" {
		msg += " [" + e.Section + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func malformed(section string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindMalformedFile, Section: section, Err: fmt.Errorf(format, args...)}
}

func mismatch(section string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindDimensionMismatch, Section: section, Err: fmt.Errorf(format, args...)}
}

func ioFailure(section string, err error) *Error {
	return &Error{Kind: KindIO, Section: section, Err: err}
}

func notFound(path string, err error) *Error {
	return &Error{Kind: KindFileNotFound, Path: path, Err: err}
}

// withPath stamps path on err when err came from this package.
func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
