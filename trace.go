package scm

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'scm'
func tracer() tracing.Trace {
	return tracing.Select("scm")
}
