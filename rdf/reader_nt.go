package rdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/turtlestream/rdf/internal/bytesrc"
	"github.com/turtlestream/rdf/internal/runeclass"
)

// ntReader implements the line-oriented N-Triples/N-Quads grammar: one
// statement per line, no directives, no prefixes, no base resolution.
// Grounded on the teacher's line-buffered decoder, adapted to a
// string-cursor per line rather than a byte cursor over the whole
// stream, since N-Triples statements never span lines.
type ntReader struct {
	src    *bytesrc.Source
	name   string
	format Format
	opts   Options
	labels *blankLabeler

	defaultGraph Term
	lineNo       int
	done         bool
}

func newNTReader(src *bytesrc.Source, format Format, opts Options) *ntReader {
	return &ntReader{
		src:    src,
		name:   src.Name(),
		format: format,
		opts:   opts,
		labels: newBlankLabeler("", true),
	}
}

func (r *ntReader) setBlankPrefix(prefix string) { r.labels.prefix = prefix }
func (r *ntReader) setDefaultGraph(g Term)        { r.defaultGraph = g }

func (r *ntReader) next() (Event, error) {
	for {
		if r.done {
			return Event{}, io.EOF
		}
		line, err := r.readLine()
		if err == io.EOF {
			r.done = true
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, err
		}
		r.lineNo++
		trimmed := strings.TrimRight(line, "\r\n")
		body := strings.TrimSpace(trimmed)
		if body == "" || strings.HasPrefix(body, "#") {
			continue
		}
		stmt, err := r.line(body)
		if err != nil {
			if r.opts.Lax && isRecoverable(err) {
				r.opts.Logger.Warnf("%v", err)
				continue
			}
			return Event{}, err
		}
		return stmt, nil
	}
}

func (r *ntReader) readLine() (string, error) {
	var buf []byte
	for {
		b, ok := r.src.Peek()
		if !ok {
			if len(buf) == 0 {
				return "", io.EOF
			}
			return string(buf), nil
		}
		r.src.Advance()
		if len(buf) >= r.opts.MaxLineBytes {
			return "", fmt.Errorf("%w: line exceeds maximum length", ErrOverflow)
		}
		buf = append(buf, b)
		if b == '\n' {
			return string(buf), nil
		}
	}
}

// line parses one statement production: "subject predicate object
// graph? '.'".
func (r *ntReader) line(body string) (Event, error) {
	c := &ntCursor{reader: r, s: body}
	subj, err := c.parseTerm(false)
	if err != nil {
		return Event{}, err
	}
	c.skipWS()
	pred, err := c.parseTerm(false)
	if err != nil {
		return Event{}, err
	}
	if _, ok := pred.(IRI); !ok {
		return Event{}, r.fail("predicate must be an IRI")
	}
	c.skipWS()
	obj, err := c.parseTerm(true)
	if err != nil {
		return Event{}, err
	}
	c.skipWS()
	var graph Term = r.defaultGraph
	if r.format.IsQuadFormat() {
		if !c.atDotOnly() {
			g, err := c.parseTerm(false)
			if err != nil {
				return Event{}, err
			}
			graph = g
			c.skipWS()
		}
	}
	if err := c.consume('.'); err != nil {
		return Event{}, err
	}
	c.skipWS()
	if c.pos != len(c.s) {
		return Event{}, r.fail("unexpected trailing content")
	}
	return Event{
		Kind:  EventStatement,
		S:     subj,
		P:     pred,
		O:     obj,
		G:     graph,
		Caret: &Caret{Doc: r.name, Line: r.lineNo, Col: 1},
	}, nil
}

func (r *ntReader) fail(msg string) *ParseError {
	return newParseError(Caret{Doc: r.name, Line: r.lineNo, Col: 1}, fmt.Errorf("%w: %s", ErrBadSyntax, msg))
}

// ntCursor walks one already-trimmed line by string index, mirroring
// the teacher's per-line parse helpers but built against this
// package's Term/Event/blankLabeler types and without TripleTerm
// (RDF-star) support, which is outside scope here.
type ntCursor struct {
	reader *ntReader
	s      string
	pos    int
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.s) && (c.s[c.pos] == ' ' || c.s[c.pos] == '\t') {
		c.pos++
	}
}

func (c *ntCursor) atDotOnly() bool {
	return c.pos < len(c.s) && c.s[c.pos] == '.'
}

func (c *ntCursor) consume(b byte) error {
	if c.pos >= len(c.s) || c.s[c.pos] != b {
		return c.reader.fail(fmt.Sprintf("expected %q", b))
	}
	c.pos++
	return nil
}

func (c *ntCursor) parseTerm(allowLiteral bool) (Term, error) {
	if c.pos >= len(c.s) {
		return nil, c.reader.fail("unexpected end of line")
	}
	switch c.s[c.pos] {
	case '<':
		return c.parseIRI()
	case '_':
		return c.parseBlank()
	case '"':
		if !allowLiteral {
			return nil, c.reader.fail("literal not allowed in this position")
		}
		return c.parseLiteral()
	default:
		return nil, c.reader.fail("unrecognized term")
	}
}

func (c *ntCursor) parseIRI() (Term, error) {
	if err := c.consume('<'); err != nil {
		return nil, err
	}
	start := c.pos
	var buf []byte
	escaped := false
	for c.pos < len(c.s) {
		b := c.s[c.pos]
		if b == '>' {
			lex := string(buf)
			if !escaped {
				lex = c.s[start:c.pos]
			}
			c.pos++
			return c.finishIRI(lex)
		}
		if b <= 0x20 {
			return nil, c.reader.fail("control character in IRI")
		}
		if b == '\\' {
			if !escaped {
				buf = append(buf, c.s[start:c.pos]...)
				escaped = true
			}
			c.pos++
			if c.pos >= len(c.s) {
				return nil, c.reader.fail("unterminated escape in IRI")
			}
			switch c.s[c.pos] {
			case 'u':
				c.pos++
				cp, err := c.readHexN(4)
				if err != nil {
					return nil, err
				}
				buf = runeclass.EncodeUTF8(buf, rune(cp))
			case 'U':
				c.pos++
				cp, err := c.readHexN(8)
				if err != nil {
					return nil, err
				}
				buf = runeclass.EncodeUTF8(buf, rune(cp))
			default:
				return nil, c.reader.fail("invalid escape in IRI")
			}
			continue
		}
		if escaped {
			buf = append(buf, b)
		}
		c.pos++
	}
	return nil, c.reader.fail("unterminated IRI")
}

func (c *ntCursor) finishIRI(lex string) (Term, error) {
	ref := iriRefFrom(lex)
	if !ref {
		return nil, c.reader.fail("relative IRI not allowed in N-Triples/N-Quads")
	}
	return IRI{Value: lex}, nil
}

// iriRefFrom reports whether lex has a scheme (i.e. is absolute),
// without pulling in the full iriref.Split machinery the Turtle reader
// needs for relative resolution — N-Triples/N-Quads never resolve.
func iriRefFrom(lex string) bool {
	for i := 0; i < len(lex); i++ {
		c := lex[i]
		switch {
		case c == ':':
			return i > 0
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.':
			continue
		default:
			return false
		}
	}
	return false
}

func (c *ntCursor) readHexN(n int) (int, error) {
	if c.pos+n > len(c.s) {
		return 0, c.reader.fail("invalid hex escape")
	}
	val := 0
	for i := 0; i < n; i++ {
		b := c.s[c.pos+i]
		if !runeclass.IsHexDigit(b) {
			return 0, c.reader.fail("invalid hex escape")
		}
		val = val*16 + runeclass.HexVal(b)
	}
	c.pos += n
	return val, nil
}

func (c *ntCursor) parseBlank() (Term, error) {
	if err := c.consume('_'); err != nil {
		return nil, err
	}
	if err := c.consume(':'); err != nil {
		return nil, err
	}
	start := c.pos
	if c.pos >= len(c.s) {
		return nil, c.reader.fail("empty blank node label")
	}
	first := c.s[c.pos]
	if !(isAlphaByte(first) || first == '_' || isDigitByte(first) || first >= 0x80) {
		return nil, c.reader.fail("invalid blank node label")
	}
	c.pos++
	for c.pos < len(c.s) {
		b := c.s[c.pos]
		if b == ' ' || b == '\t' {
			break
		}
		c.pos++
	}
	label := strings.TrimRight(c.s[start:c.pos], ".")
	c.pos = start + len(label)
	blank, err := c.reader.labels.User(label)
	if err != nil {
		return nil, c.reader.fail(err.Error())
	}
	return blank, nil
}

func (c *ntCursor) parseLiteral() (Term, error) {
	if err := c.consume('"'); err != nil {
		return nil, err
	}
	start := c.pos
	var buf []byte
	escaped := false
	for {
		if c.pos >= len(c.s) {
			return nil, c.reader.fail("unterminated string literal")
		}
		b := c.s[c.pos]
		if b == '"' {
			lex := string(buf)
			if !escaped {
				lex = c.s[start:c.pos]
			}
			c.pos++
			return c.parseLangOrDatatype(lex)
		}
		if b == '\\' {
			if !escaped {
				buf = append(buf, c.s[start:c.pos]...)
				escaped = true
			}
			c.pos++
			nb, err := c.readEscape()
			if err != nil {
				return nil, err
			}
			buf = nb
			continue
		}
		if escaped {
			buf = append(buf, b)
		}
		c.pos++
	}
}

func (c *ntCursor) readEscape() ([]byte, error) {
	if c.pos >= len(c.s) {
		return nil, c.reader.fail("unterminated escape sequence")
	}
	b := c.s[c.pos]
	var out byte
	switch b {
	case 't':
		out = '\t'
	case 'b':
		out = '\b'
	case 'n':
		out = '\n'
	case 'r':
		out = '\r'
	case 'f':
		out = '\f'
	case '\\':
		out = '\\'
	case '"':
		out = '"'
	case '\'':
		out = '\''
	case 'u':
		c.pos++
		cp, err := c.readHexN(4)
		if err != nil {
			return nil, err
		}
		return runeclass.EncodeUTF8(nil, rune(cp)), nil
	case 'U':
		c.pos++
		cp, err := c.readHexN(8)
		if err != nil {
			return nil, err
		}
		return runeclass.EncodeUTF8(nil, rune(cp)), nil
	default:
		return nil, c.reader.fail("invalid escape sequence")
	}
	c.pos++
	return []byte{out}, nil
}

func (c *ntCursor) parseLangOrDatatype(lex string) (Term, error) {
	if c.pos < len(c.s) && c.s[c.pos] == '@' {
		c.pos++
		start := c.pos
		for c.pos < len(c.s) && (isAlphaByte(c.s[c.pos]) || c.s[c.pos] == '-' || isDigitByte(c.s[c.pos])) {
			c.pos++
		}
		if c.pos == start {
			return nil, c.reader.fail("invalid language tag")
		}
		return NewLangLiteral(lex, c.s[start:c.pos]), nil
	}
	if c.pos+1 < len(c.s) && c.s[c.pos] == '^' && c.s[c.pos+1] == '^' {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return nil, err
		}
		iri, ok := dt.(IRI)
		if !ok {
			return nil, c.reader.fail("datatype must be an IRI")
		}
		lit, err := NewTypedLiteral(lex, iri.Value)
		if err != nil {
			return nil, c.reader.fail(err.Error())
		}
		return lit, nil
	}
	return NewLiteral(lex), nil
}
