package rdf

import (
	"fmt"
	"io"

	"github.com/turtlestream/rdf/internal/bytesrc"
)

// Reader is a pull parser over one of the four Turtle-family syntaxes,
// per spec §4.G. The read loop lives inside the parser: ReadChunk and
// ReadDocument both pull bytes from the underlying source on demand.
type Reader struct {
	format Format
	opts   Options
	inner  pullReader
}

// pullReader is implemented by turtleReader (Turtle/TriG) and ntReader
// (N-Triples/N-Quads); Reader dispatches to whichever the format needs.
type pullReader interface {
	next() (Event, error)
	setBlankPrefix(prefix string)
	setDefaultGraph(g Term)
}

// NewReader constructs a Reader for the given format, reading from r.
// name identifies the source in diagnostics (a file path, or "<input>"
// for anonymous streams). format must not be FormatAuto; use
// FormatFromExtension or ParseFormat to resolve it first.
func NewReader(format Format, r io.Reader, name string, opts Options) (*Reader, error) {
	opts = opts.normalized()
	src := bytesrc.Open(r, name)
	var inner pullReader
	switch {
	case format.IsLineOriented():
		inner = newNTReader(src, format, opts)
	case format == FormatTurtle || format == FormatTriG:
		inner = newTurtleReader(src, format, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &Reader{format: format, opts: opts, inner: inner}, nil
}

// AddBlankPrefix sets a string prepended to every generated blank node
// ID, so documents read separately (or merged into one model) don't
// collide on "b1"-style labels.
func (r *Reader) AddBlankPrefix(prefix string) { r.inner.setBlankPrefix(prefix) }

// SetDefaultGraph sets the graph assigned to statements that carry no
// explicit graph term (all of Turtle/N-Triples, and TriG/N-Quads
// statements outside any named graph block).
func (r *Reader) SetDefaultGraph(g Term) { r.inner.setDefaultGraph(g) }

// ReadChunk reads one top-level statement's worth of events — a
// directive, or a statement together with whatever nested anonymous-
// node or collection expansion it carries — and returns the first
// queued event. Call it again to drain the rest before the next
// statement is parsed; this is what makes it safe to use on
// socket-delimited streams. io.EOF ends the document.
func (r *Reader) ReadChunk() (Event, error) {
	return r.inner.next()
}

// ReadDocument drives ReadChunk until EOF, handing every event to sink
// in order.
func (r *Reader) ReadDocument(sink Sink) error {
	for {
		ev, err := r.ReadChunk()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.Handle(ev); err != nil {
			return err
		}
	}
}
