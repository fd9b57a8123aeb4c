package rdf

import "github.com/sirupsen/logrus"

// Default resource limits, mirroring the teacher's DecodeOptions
// defaults but renamed to match this spec's reader-stack terminology.
const (
	DefaultReaderStackBytes = 4 << 20 // parser arena capacity
	DefaultMaxLineBytes     = 1 << 20
)

// Options configures a Reader. The zero value is strict mode with
// default limits and no blank-node prefix.
type Options struct {
	// Lax enables lax-mode recovery: BadSyntax, BadText and BadLabel are
	// downgraded to a logged warning, the reader skips to the next
	// newline, and parsing resumes (spec §7). All other errors remain
	// fatal regardless of this setting.
	Lax bool

	// ExactBlanks disables the b<digit>/B<digit> clash-avoidance rewrite
	// of spec §4.G, for callers who want user-visible blank labels
	// preserved byte-for-byte at the risk of ID_CLASH.
	ExactBlanks bool

	// AllowVariables opts into "?name"/"$name" Variable nodes (a
	// SPEC_FULL.md extension point, never emitted unless set).
	AllowVariables bool

	// ReaderStackBytes sizes the node arena. Zero uses
	// DefaultReaderStackBytes.
	ReaderStackBytes int

	// MaxLineBytes bounds a single N-Triples/N-Quads line. Zero uses
	// DefaultMaxLineBytes.
	MaxLineBytes int

	// Logger receives lax-mode warnings and other non-fatal diagnostics.
	// Defaults to logrus.StandardLogger() when nil.
	Logger logrus.FieldLogger
}

func (o Options) normalized() Options {
	if o.ReaderStackBytes == 0 {
		o.ReaderStackBytes = DefaultReaderStackBytes
	}
	if o.MaxLineBytes == 0 {
		o.MaxLineBytes = DefaultMaxLineBytes
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// WriterStyle selects the few non-normative formatter-taste knobs §9
// calls out as not affecting round-trip correctness.
type WriterStyle struct {
	// ASCII forces non-ASCII code points to \uXXXX/\UXXXXXXXX escapes
	// instead of passing UTF-8 bytes through.
	ASCII bool
	// Indent starts each continuation line after ';' in a top-level
	// statement group (default "  "). Anonymous-node bodies and
	// collections are written on one line and are not indented.
	Indent string
	// BlankLineBetweenSubjects inserts an extra newline between
	// statement groups that share no subject (teacher-style "readable"
	// output); false emits a single newline.
	BlankLineBetweenSubjects bool
	// Resolved enables base/root relativization of IRIs on output.
	Resolved bool
	// RootURI, if set together with Resolved, bounds relativization: the
	// writer never emits a reference that would escape this subtree.
	RootURI string
}

func (s WriterStyle) normalized() WriterStyle {
	if s.Indent == "" {
		s.Indent = "  "
	}
	return s
}
