package rdf

import (
	"path/filepath"
	"strings"
)

// Format identifies one of the four Turtle-family serializations this
// library reads and writes, per spec §6.
type Format string

// The syntaxes recognized by this package.
const (
	FormatAuto     Format = ""
	FormatTurtle   Format = "turtle"
	FormatTriG     Format = "trig"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
)

// IsQuadFormat reports whether the format carries a graph component.
func (f Format) IsQuadFormat() bool {
	return f == FormatTriG || f == FormatNQuads
}

// IsLineOriented reports whether f is parsed by the line-oriented N-Triples
// /N-Quads reader rather than the full Turtle/TriG recursive descent.
func (f Format) IsLineOriented() bool {
	return f == FormatNTriples || f == FormatNQuads
}

// ParseFormat normalizes a format name (as typed on a CLI flag or read
// from a config file) to a Format.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "turtle", "ttl":
		return FormatTurtle, true
	case "trig":
		return FormatTriG, true
	case "ntriples", "nt":
		return FormatNTriples, true
	case "nquads", "nq":
		return FormatNQuads, true
	default:
		return "", false
	}
}

// FormatFromExtension detects a Format from a file's extension, per the
// §6 auto-detection rule (.nt, .nq, .ttl, .trig).
func FormatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return FormatNTriples, true
	case ".nq":
		return FormatNQuads, true
	case ".ttl":
		return FormatTurtle, true
	case ".trig":
		return FormatTriG, true
	default:
		return "", false
	}
}

func (f Format) String() string { return string(f) }
