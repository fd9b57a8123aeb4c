// Package bytesrc provides a buffered, one-byte-peek pull source over an
// io.Reader (or a string), tracking a 1-based line/column cursor the way
// the parser's error carets expect.
package bytesrc

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Cursor is a 1-based source position.
type Cursor struct {
	Line int
	Col  int
}

// Source is a buffered pull-style byte input with single-byte lookahead.
// It is not safe for concurrent use.
type Source struct {
	r    *bufio.Reader
	name string
	pos  Cursor
	eof  bool

	havePeek bool
	peekByte byte
	peekEOF  bool
}

const sentinelEOF = -1

// Open wraps r as a Source named name. A leading UTF-8 BOM (EF BB BF) is
// consumed silently; any other leading BOM is left in the stream (the
// caller's grammar will reject it as a syntax error in its own terms).
func Open(r io.Reader, name string) *Source {
	s := &Source{r: bufio.NewReader(r), name: name, pos: Cursor{Line: 1, Col: 1}}
	s.consumeBOM()
	return s
}

// OpenString builds a Source directly from a string.
func OpenString(s string, name string) *Source {
	return Open(strings.NewReader(s), name)
}

func (s *Source) consumeBOM() {
	b, err := s.r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = s.r.Discard(3)
	}
}

// Name returns the source's document name, for diagnostics.
func (s *Source) Name() string { return s.name }

// Pos returns the current cursor position (the position of the byte that
// Peek would return next).
func (s *Source) Pos() Cursor { return s.pos }

// Peek returns the next byte without consuming it. ok is false at EOF.
func (s *Source) Peek() (byte, bool) {
	if s.havePeek {
		return s.peekByte, !s.peekEOF
	}
	b, err := s.r.ReadByte()
	if err != nil {
		s.havePeek = true
		s.peekEOF = true
		return 0, false
	}
	s.havePeek = true
	s.peekEOF = false
	s.peekByte = b
	return b, true
}

// PeekAt returns the byte n bytes ahead (0 == Peek()) without consuming
// anything, when the underlying buffer can satisfy it. ok is false if
// fewer than n+1 bytes remain before EOF or the buffer cannot look that
// far ahead.
func (s *Source) PeekAt(n int) (byte, bool) {
	if n == 0 {
		return s.Peek()
	}
	// Ensure the 0th byte is buffered first so Peek's buffer alignment
	// is consistent with bufio's internal cursor. Once it is, bufio's
	// own cursor sits at logical offset 1 (Peek's ReadByte already
	// consumed offset 0 into peekByte), so logical offset n is bufio
	// buffer index n-1.
	if !s.havePeek {
		s.Peek()
	}
	buf, err := s.r.Peek(n)
	if err != nil || len(buf) < n {
		return 0, false
	}
	return buf[n-1], true
}

// Advance consumes the peeked byte and moves the cursor. It returns false
// at EOF (nothing to advance).
func (s *Source) Advance() bool {
	b, ok := s.Peek()
	if !ok {
		return false
	}
	s.havePeek = false
	if b == '\n' {
		s.pos.Line++
		s.pos.Col = 1
	} else {
		s.pos.Col++
	}
	return true
}

// ReadByte consumes and returns the next byte, or io.EOF.
func (s *Source) ReadByte() (byte, error) {
	b, ok := s.Peek()
	if !ok {
		return 0, io.EOF
	}
	s.Advance()
	return b, nil
}

// AtEOF reports whether the source is exhausted.
func (s *Source) AtEOF() bool {
	_, ok := s.Peek()
	return !ok
}

// SkipToNewline consumes bytes up to and including the next '\n', or
// through EOF. Used by lax-mode error recovery.
func (s *Source) SkipToNewline() {
	for {
		b, ok := s.Peek()
		if !ok {
			return
		}
		s.Advance()
		if b == '\n' {
			return
		}
	}
}

// ErrClosed reports use of a closed source. Source has no Close method,
// and no function in this package returns ErrClosed.
var ErrClosed = errors.New("bytesrc: source closed")
