package rdf

import (
	"errors"
	"fmt"
	"io"

	"github.com/turtlestream/rdf/internal/arena"
	"github.com/turtlestream/rdf/internal/bytesrc"
	"github.com/turtlestream/rdf/internal/iriref"
	"github.com/turtlestream/rdf/internal/runeclass"
)

const scratchKind arena.Kind = 0

const (
	xsdBooleanIRI = "http://www.w3.org/2001/XMLSchema#boolean"
	xsdIntegerIRI = "http://www.w3.org/2001/XMLSchema#integer"
	xsdDecimalIRI = "http://www.w3.org/2001/XMLSchema#decimal"
	xsdDoubleIRI  = "http://www.w3.org/2001/XMLSchema#double"
)

// termShape classifies how a term was produced, so the caller can
// attach the right statement flags (§4.G's ANON_S/O, LIST_S/O,
// EMPTY_S/O) without re-inspecting the term itself.
type termShape uint8

const (
	shapePlain termShape = iota
	shapeAnon
	shapeAnonEmpty
	shapeList
	shapeListEmpty
)

// turtleReader implements the full recursive-descent Turtle/TriG
// grammar. Some methods carry the grammar's production names
// (predicateObjectList, objectList, collection, blankNodeLabel,
// prefixedName, stringLiteral, langtag); the others are named for what
// they parse (statement, directiveAt, graphBlockBody, verbTerm, term,
// blankNodePropertyList, numericLiteral).
type turtleReader struct {
	src    *bytesrc.Source
	format Format
	opts   Options
	arena  *arena.Arena
	env    *PrefixEnv
	labels *blankLabeler

	curGraph     Term
	defaultGraph Term

	queue []Event
	done  bool
}

func newTurtleReader(src *bytesrc.Source, format Format, opts Options) *turtleReader {
	return &turtleReader{
		src:    src,
		format: format,
		opts:   opts,
		env:    NewPrefixEnv(),
		labels: newBlankLabeler("", opts.ExactBlanks),
		arena:  arena.New(opts.ReaderStackBytes),
	}
}

func (r *turtleReader) setBlankPrefix(prefix string) { r.labels.prefix = prefix }
func (r *turtleReader) setDefaultGraph(g Term)        { r.defaultGraph, r.curGraph = g, g }

// next implements the pull loop behind ReadChunk/ReadDocument: parse
// top-level statements until at least one event is queued, recovering
// from errors by skipping to the next newline when opts.Lax allows it.
func (r *turtleReader) next() (Event, error) {
	for len(r.queue) == 0 {
		if r.done {
			return Event{}, io.EOF
		}
		ok, err := r.statement()
		if err != nil {
			if r.opts.Lax && isRecoverable(err) {
				r.opts.Logger.Warnf("%v", err)
				r.src.SkipToNewline()
				continue
			}
			return Event{}, err
		}
		if !ok {
			return Event{}, io.EOF
		}
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, nil
}

func isRecoverable(err error) bool {
	return errors.Is(err, ErrBadSyntax) || errors.Is(err, ErrBadText) ||
		errors.Is(err, ErrBadLabel) || errors.Is(err, ErrIDClash)
}

// statement parses one turtleTrigDoc production (a directive or an
// n3_statement/TriG graph), bracketing it with an arena high-water
// mark per spec §4.G's error-recovery contract: node bytes are only
// ever needed until they're copied out as Go strings (internal/arena's
// String), so the whole statement's working set can be reclaimed once
// it (or its failure) is fully parsed.
func (r *turtleReader) statement() (bool, error) {
	mark0, mark1 := r.arena.Mark()
	ok, err := r.statementInner()
	r.arena.RewindTo(mark0, mark1)
	return ok, err
}

func (r *turtleReader) statementInner() (bool, error) {
	r.skipWS()
	if _, ok := r.src.Peek(); !ok {
		r.done = true
		return false, nil
	}
	b, _ := r.src.Peek()
	if b == '@' {
		return true, r.directiveAt()
	}
	if r.format == FormatTriG && b == '{' {
		r.src.Advance()
		return true, r.graphBlockBody(nil)
	}
	if isAlphaByte(b) {
		if r.tryKeywordBoundary("PREFIX", false) {
			return true, r.prefixDirective(false)
		}
		if r.tryKeywordBoundary("BASE", false) {
			return true, r.baseDirective(false)
		}
		if r.format == FormatTriG && r.tryKeywordBoundary("GRAPH", false) {
			return true, r.wrappedGraphStatement(true)
		}
	}
	return true, r.statementBody()
}

// directive dispatches "@prefix" / "@base".
func (r *turtleReader) directiveAt() error {
	r.src.Advance() // '@'
	if r.tryKeywordBoundary("prefix", true) {
		return r.prefixDirective(true)
	}
	if r.tryKeywordBoundary("base", true) {
		return r.baseDirective(true)
	}
	return r.fail(ErrBadSyntax, "expected 'prefix' or 'base' after '@'")
}

func (r *turtleReader) prefixDirective(requireDot bool) error {
	r.skipWS()
	prefix, err := r.readPNPrefixOrEmpty()
	if err != nil {
		return err
	}
	if err := r.expectByte(':'); err != nil {
		return r.fail(ErrBadSyntax, "expected ':' after prefix name")
	}
	r.skipWS()
	lex, err := r.rawIRIRef()
	if err != nil {
		return err
	}
	resolved := r.resolveIRI(lex)
	if requireDot {
		r.skipWS()
		if err := r.expectByte('.'); err != nil {
			return r.fail(ErrBadSyntax, "expected '.' after @prefix directive")
		}
	}
	r.env.SetPrefix(prefix, resolved)
	r.emitRaw(Event{Kind: EventPrefix, PrefixName: prefix, PrefixIRI: resolved})
	return nil
}

func (r *turtleReader) baseDirective(requireDot bool) error {
	r.skipWS()
	lex, err := r.rawIRIRef()
	if err != nil {
		return err
	}
	resolved := r.resolveIRI(lex)
	if requireDot {
		r.skipWS()
		if err := r.expectByte('.'); err != nil {
			return r.fail(ErrBadSyntax, "expected '.' after @base directive")
		}
	}
	r.env.SetBase(resolved)
	r.emitRaw(Event{Kind: EventBase, BaseIRI: resolved})
	return nil
}

// wrappedGraphStatement parses TriG's "GRAPH label? '{' ... '}'".
func (r *turtleReader) wrappedGraphStatement(hasKeyword bool) error {
	var graph Term
	if hasKeyword {
		r.skipWS()
		if b, ok := r.src.Peek(); !ok || b != '{' {
			t, _, err := r.term(false)
			if err != nil {
				return err
			}
			graph = t
		}
	}
	r.skipWS()
	if err := r.expectByte('{'); err != nil {
		return r.fail(ErrBadSyntax, "expected '{'")
	}
	return r.graphBlockBody(graph)
}

// graphBlockBody parses the statements inside a TriG graph block
// (named or default), already past the opening '{'.
func (r *turtleReader) graphBlockBody(graph Term) error {
	prevGraph := r.curGraph
	if graph != nil {
		r.curGraph = graph
	} else {
		r.curGraph = r.defaultGraph
	}
	defer func() { r.curGraph = prevGraph }()

	for {
		r.skipWS()
		b, ok := r.src.Peek()
		if !ok {
			return r.fail(ErrNoData, "unterminated graph block")
		}
		if b == '}' {
			r.src.Advance()
			return nil
		}
		subj, shape, err := r.term(false)
		if err != nil {
			return err
		}
		if err := r.continueStatementFromSubject(subj, shape); err != nil {
			return err
		}
	}
}

// statementBody parses an ordinary n3_statement: "subject
// predicateObjectList '.'", or — in TriG — a graph label immediately
// followed by '{', distinguished only after the label term is parsed
// (iri and BlankNode are valid both as a subject and as a graph label,
// so nothing needs to be un-consumed).
func (r *turtleReader) statementBody() error {
	subj, shape, err := r.term(false)
	if err != nil {
		return err
	}
	if r.format == FormatTriG && shape == shapePlain {
		r.skipWS()
		if b, ok := r.src.Peek(); ok && b == '{' {
			if _, isBlank := subj.(Blank); !isBlank {
				if _, isIRI := subj.(IRI); !isIRI {
					return r.fail(ErrBadSyntax, "graph name must be an IRI or blank node")
				}
			}
			r.src.Advance()
			return r.graphBlockBody(subj)
		}
	}
	return r.continueStatementFromSubject(subj, shape)
}

func (r *turtleReader) continueStatementFromSubject(subj Term, shape termShape) error {
	switch shape {
	case shapeAnonEmpty:
		r.skipWS()
		if b, ok := r.src.Peek(); !ok || b == '.' {
			r.emitStatement(subj, nil, nil, r.curGraph, FlagEmptyS)
			return r.consumeDot()
		}
		if err := r.predicateObjectList(subj, FlagEmptyS); err != nil {
			return err
		}
		return r.consumeDot()
	case shapeAnon:
		r.skipWS()
		if b, ok := r.src.Peek(); !ok || b == '.' {
			return r.consumeDot()
		}
		if err := r.predicateObjectList(subj, FlagAnonS); err != nil {
			return err
		}
		return r.consumeDot()
	default:
		if err := r.predicateObjectList(subj, shapeFlagsForSubject(shape)); err != nil {
			return err
		}
		return r.consumeDot()
	}
}

func shapeFlagsForSubject(s termShape) StatementFlags {
	switch s {
	case shapeList:
		return FlagListS
	default:
		return 0
	}
}

func shapeFlagsForObject(s termShape) StatementFlags {
	switch s {
	case shapeAnon:
		return FlagAnonO
	case shapeAnonEmpty:
		return FlagEmptyO
	case shapeList:
		return FlagListO
	default:
		return 0
	}
}

// predicateObjectList parses "verb objectList (';' (verb objectList)?)*".
func (r *turtleReader) predicateObjectList(subject Term, baseFlags StatementFlags) error {
	for {
		pred, err := r.verbTerm()
		if err != nil {
			return err
		}
		if err := r.objectList(subject, pred, baseFlags); err != nil {
			return err
		}
		r.skipWS()
		b, ok := r.src.Peek()
		if !ok || b != ';' {
			return nil
		}
		for ok && b == ';' {
			r.src.Advance()
			r.skipWS()
			b, ok = r.src.Peek()
		}
		if !ok || b == '.' || b == ']' || b == '}' {
			return nil
		}
	}
}

// objectList parses a comma-separated object production, emitting one
// statement per object. Each statement is queued ahead of the events an
// anonymous-node or collection object queued while it was parsed, so the
// statement that introduces a bracket precedes the bracket's body.
func (r *turtleReader) objectList(subject, predicate Term, baseFlags StatementFlags) error {
	for {
		at := len(r.queue)
		obj, shape, err := r.term(true)
		if err != nil {
			return err
		}
		r.emitStatement(subject, predicate, obj, r.curGraph, baseFlags|shapeFlagsForObject(shape))
		if last := len(r.queue) - 1; last > at {
			ev := r.queue[last]
			copy(r.queue[at+1:], r.queue[at:last])
			r.queue[at] = ev
		}
		r.skipWS()
		b, ok := r.src.Peek()
		if !ok || b != ',' {
			return nil
		}
		r.src.Advance()
		r.skipWS()
	}
}

// verb parses "a" (abbreviating rdf:type) or an ordinary predicate term.
func (r *turtleReader) verbTerm() (Term, error) {
	if r.tryKeywordBoundary("a", true) {
		return IRI{Value: RDFType}, nil
	}
	t, _, err := r.term(false)
	if err != nil {
		return nil, err
	}
	switch t.(type) {
	case IRI, Variable:
		return t, nil
	default:
		return nil, r.fail(ErrBadSyntax, "predicate must be an IRI")
	}
}

// term parses the "subject"/"object" production: iri, BlankNode,
// collection, blankNodePropertyList, literal (only when allowLiteral),
// or — an extension gated by Options.AllowVariables — a variable.
func (r *turtleReader) term(allowLiteral bool) (Term, termShape, error) {
	r.skipWS()
	b, ok := r.src.Peek()
	if !ok {
		return nil, shapePlain, r.fail(ErrNoData, "unexpected end of input")
	}
	switch {
	case b == '<':
		t, err := r.iriref()
		return t, shapePlain, err
	case b == '_':
		if nb, ok2 := r.src.PeekAt(1); ok2 && nb == ':' {
			t, err := r.blankNodeLabel()
			return t, shapePlain, err
		}
	case b == '[':
		return r.blankNodePropertyList()
	case b == '(':
		return r.collection()
	case b == '"' || b == '\'':
		if !allowLiteral {
			return nil, shapePlain, r.fail(ErrBadSyntax, "literal not allowed in this position")
		}
		t, err := r.literalValue()
		return t, shapePlain, err
	case (b == '+' || b == '-' || isDigitByte(b)) && allowLiteral:
		return r.numericLiteral()
	case (b == '?' || b == '$') && r.opts.AllowVariables:
		t, err := r.variable()
		return t, shapePlain, err
	}
	if allowLiteral {
		if r.tryKeywordBoundary("true", true) {
			lit, _ := NewTypedLiteral("true", xsdBooleanIRI)
			return lit, shapePlain, nil
		}
		if r.tryKeywordBoundary("false", true) {
			lit, _ := NewTypedLiteral("false", xsdBooleanIRI)
			return lit, shapePlain, nil
		}
	}
	t, err := r.prefixedName()
	return t, shapePlain, err
}

// iriref parses IRIREF and resolves it against the current base.
func (r *turtleReader) iriref() (Term, error) {
	lex, err := r.rawIRIRef()
	if err != nil {
		return nil, err
	}
	return IRI{Value: r.resolveIRI(lex)}, nil
}

// rawIRIRef parses IRIREF's bracketed content, decoding UCHAR escapes
// but otherwise leaving the text unresolved.
func (r *turtleReader) rawIRIRef() (string, error) {
	if err := r.expectByte('<'); err != nil {
		return "", r.fail(ErrBadSyntax, "expected '<'")
	}
	var buf []byte
	for {
		b, ok := r.src.Peek()
		if !ok {
			return "", r.fail(ErrNoData, "unterminated IRI reference")
		}
		switch {
		case b == '>':
			r.src.Advance()
			return r.commit(buf)
		case b <= 0x20:
			return "", r.fail(ErrBadSyntax, "control character in IRI reference")
		case b == '<' || b == '"' || b == '{' || b == '}' || b == '|' || b == '^' || b == '`':
			return "", r.fail(ErrBadSyntax, "illegal character in IRI reference")
		case b == '\\':
			r.src.Advance()
			nb, ok := r.src.Peek()
			if !ok {
				return "", r.fail(ErrNoData, "unterminated escape in IRI reference")
			}
			switch nb {
			case 'u':
				r.src.Advance()
				cp, err := r.readHexN(4)
				if err != nil {
					return "", err
				}
				buf = runeclass.EncodeUTF8(buf, rune(cp))
			case 'U':
				r.src.Advance()
				cp, err := r.readHexN(8)
				if err != nil {
					return "", err
				}
				buf = runeclass.EncodeUTF8(buf, rune(cp))
			default:
				return "", r.fail(ErrBadSyntax, "invalid escape in IRI reference")
			}
		default:
			buf = append(buf, b)
			r.src.Advance()
		}
	}
}

// resolveIRI resolves a (possibly relative) IRI reference against the
// environment's current base, per RFC 3986 §5.2. Without a base, the
// reference is returned unchanged — a document with no @base directive
// must only use absolute IRIs, which this does not itself enforce
// (left to the consuming application, as the W3C test suite expects).
func (r *turtleReader) resolveIRI(lex string) string {
	baseStr, hasBase := r.env.Base()
	if !hasBase {
		return lex
	}
	ref := iriref.Split(lex)
	if ref.IsAbsolute() {
		return lex
	}
	base := iriref.Split(baseStr)
	return iriref.Resolve(ref, base).String()
}

// blankNodeLabel parses BLANK_NODE_LABEL ("_:" PN_CHARS_U|DIGIT
// (PN_CHARS|'.')* PN_CHARS), applying the clash-avoidance rewrite.
func (r *turtleReader) blankNodeLabel() (Term, error) {
	r.src.Advance() // '_'
	r.src.Advance() // ':'
	label, err := r.scanDotTrimmedRun(isBlankLabelFirst, runeclass.PNChars)
	if err != nil {
		return nil, err
	}
	if label == "" {
		return nil, r.fail(ErrBadSyntax, "empty blank node label")
	}
	b, err := r.labels.User(label)
	if err != nil {
		return nil, r.fail(ErrIDClash, err.Error())
	}
	return b, nil
}

func isBlankLabelFirst(cp rune) bool {
	return runeclass.PNCharsBase(cp) || cp == '_' || (cp >= '0' && cp <= '9')
}

// blankNodePropertyList parses "'[' predicateObjectList? ']'", per
// §4.G: on entry (when non-empty) the node's own body is emitted with
// ANON_CONT, and on exit an EventEnd closes it.
func (r *turtleReader) blankNodePropertyList() (Term, termShape, error) {
	r.src.Advance() // '['
	r.skipWS()
	if b, ok := r.src.Peek(); ok && b == ']' {
		r.src.Advance()
		return r.labels.Fresh(), shapeAnonEmpty, nil
	}
	blank := r.labels.Fresh()
	if err := r.predicateObjectList(blank, FlagAnonS|FlagAnonCont); err != nil {
		return nil, shapePlain, err
	}
	r.skipWS()
	if err := r.expectByte(']'); err != nil {
		return nil, shapePlain, r.fail(ErrBadSyntax, "expected ']'")
	}
	r.emitRaw(Event{Kind: EventEnd, EndNode: blank})
	return blank, shapeAnon, nil
}

// collection parses "'(' object* ')'", expanding to an rdf:first/
// rdf:rest chain terminated by rdf:nil. Each link's own triples carry
// LIST_S|LIST_CONT; the spec's "two-node rotation" note describes
// keeping a C-style node arena in valid push order while building this
// chain — moot here, since Term values are ordinary Go values rather
// than arena-resident nodes.
func (r *turtleReader) collection() (Term, termShape, error) {
	r.src.Advance() // '('
	r.skipWS()
	if b, ok := r.src.Peek(); ok && b == ')' {
		r.src.Advance()
		return IRI{Value: RDFNil}, shapeListEmpty, nil
	}
	var items []Term
	var shapes []termShape
	for {
		obj, shape, err := r.term(true)
		if err != nil {
			return nil, shapePlain, err
		}
		items = append(items, obj)
		shapes = append(shapes, shape)
		r.skipWS()
		if b, ok := r.src.Peek(); ok && b == ')' {
			r.src.Advance()
			break
		}
	}
	head := r.labels.Fresh()
	cur := head
	for i, item := range items {
		r.emitStatement(cur, IRI{Value: RDFFirst}, item, r.curGraph, FlagListS|FlagListCont|shapeFlagsForObject(shapes[i]))
		var rest Term
		if i == len(items)-1 {
			rest = IRI{Value: RDFNil}
		} else {
			rest = r.labels.Fresh()
		}
		r.emitStatement(cur, IRI{Value: RDFRest}, rest, r.curGraph, FlagListS|FlagListCont)
		if b, ok := rest.(Blank); ok {
			cur = b
		}
	}
	return head, shapeList, nil
}

// literalValue parses "String (LANGTAG | '^^' iri)?".
func (r *turtleReader) literalValue() (Term, error) {
	lex, err := r.stringLiteral()
	if err != nil {
		return nil, err
	}
	if b, ok := r.src.Peek(); ok && b == '@' {
		r.src.Advance()
		lang, err := r.langtag()
		if err != nil {
			return nil, err
		}
		return NewLangLiteral(lex, lang), nil
	}
	if b, ok := r.src.Peek(); ok && b == '^' {
		if nb, ok2 := r.src.PeekAt(1); ok2 && nb == '^' {
			r.src.Advance()
			r.src.Advance()
			dt, _, err := r.term(false)
			if err != nil {
				return nil, err
			}
			iri, ok3 := dt.(IRI)
			if !ok3 {
				return nil, r.fail(ErrBadSyntax, "datatype must be an IRI")
			}
			lit, err := NewTypedLiteral(lex, iri.Value)
			if err != nil {
				return nil, r.fail(ErrBadArg, err.Error())
			}
			return lit, nil
		}
	}
	return NewLiteral(lex), nil
}

// stringLiteral parses String: a short '"'/'\'' literal or a long
// triple-quoted one, chosen by lookahead.
func (r *turtleReader) stringLiteral() (string, error) {
	quote, ok := r.src.Peek()
	if !ok || (quote != '"' && quote != '\'') {
		return "", r.fail(ErrBadSyntax, "expected string literal")
	}
	b1, _ := r.src.PeekAt(1)
	b2, _ := r.src.PeekAt(2)
	if b1 == quote && b2 == quote {
		r.src.Advance()
		r.src.Advance()
		r.src.Advance()
		return r.readLongStringBody(quote)
	}
	r.src.Advance()
	return r.readShortStringBody(quote)
}

func (r *turtleReader) readShortStringBody(quote byte) (string, error) {
	var buf []byte
	for {
		b, ok := r.src.Peek()
		if !ok {
			return "", r.fail(ErrNoData, "unterminated string literal")
		}
		switch {
		case b == quote:
			r.src.Advance()
			return r.commit(buf)
		case b == '\n' || b == '\r':
			return "", r.fail(ErrBadSyntax, "unescaped newline in string literal")
		case b == '\\':
			r.src.Advance()
			nb, err := r.readEscapeInto(buf)
			if err != nil {
				return "", err
			}
			buf = nb
		default:
			buf = append(buf, b)
			r.src.Advance()
		}
	}
}

func (r *turtleReader) readLongStringBody(quote byte) (string, error) {
	var buf []byte
	for {
		b, ok := r.src.Peek()
		if !ok {
			return "", r.fail(ErrNoData, "unterminated long string literal")
		}
		if b == quote {
			b1, ok1 := r.src.PeekAt(1)
			b2, ok2 := r.src.PeekAt(2)
			if ok1 && ok2 && b1 == quote && b2 == quote {
				r.src.Advance()
				r.src.Advance()
				r.src.Advance()
				return r.commit(buf)
			}
			buf = append(buf, b)
			r.src.Advance()
			continue
		}
		if b == '\\' {
			r.src.Advance()
			nb, err := r.readEscapeInto(buf)
			if err != nil {
				return "", err
			}
			buf = nb
			continue
		}
		buf = append(buf, b)
		r.src.Advance()
	}
}

// readEscapeInto decodes one ECHAR or UCHAR sequence (the leading
// backslash already consumed) and appends its bytes to buf.
func (r *turtleReader) readEscapeInto(buf []byte) ([]byte, error) {
	b, ok := r.src.Peek()
	if !ok {
		return nil, r.fail(ErrNoData, "unterminated escape sequence")
	}
	switch b {
	case 't':
		r.src.Advance()
		return append(buf, '\t'), nil
	case 'b':
		r.src.Advance()
		return append(buf, '\b'), nil
	case 'n':
		r.src.Advance()
		return append(buf, '\n'), nil
	case 'r':
		r.src.Advance()
		return append(buf, '\r'), nil
	case 'f':
		r.src.Advance()
		return append(buf, '\f'), nil
	case '\\':
		r.src.Advance()
		return append(buf, '\\'), nil
	case '"':
		r.src.Advance()
		return append(buf, '"'), nil
	case '\'':
		r.src.Advance()
		return append(buf, '\''), nil
	case '`':
		r.src.Advance()
		return append(buf, '`'), nil
	case 'u':
		r.src.Advance()
		cp, err := r.readHexN(4)
		if err != nil {
			return nil, err
		}
		if cp >= 0xD800 && cp <= 0xDBFF {
			if err := r.expectByte('\\'); err != nil {
				return nil, r.fail(ErrBadText, "unpaired surrogate escape")
			}
			if err := r.expectByte('u'); err != nil {
				return nil, r.fail(ErrBadText, "unpaired surrogate escape")
			}
			low, err := r.readHexN(4)
			if err != nil {
				return nil, err
			}
			if low < 0xDC00 || low > 0xDFFF {
				return nil, r.fail(ErrBadText, "invalid low surrogate")
			}
			combined := rune(0x10000 + (cp-0xD800)<<10 + (low - 0xDC00))
			return runeclass.EncodeUTF8(buf, combined), nil
		}
		if cp >= 0xDC00 && cp <= 0xDFFF {
			return nil, r.fail(ErrBadText, "unpaired low surrogate")
		}
		return runeclass.EncodeUTF8(buf, rune(cp)), nil
	case 'U':
		r.src.Advance()
		cp, err := r.readHexN(8)
		if err != nil {
			return nil, err
		}
		if cp > 0x10FFFF || (cp >= 0xD800 && cp <= 0xDFFF) {
			return nil, r.fail(ErrBadText, "invalid code point")
		}
		return runeclass.EncodeUTF8(buf, rune(cp)), nil
	default:
		return nil, r.fail(ErrBadSyntax, "invalid escape sequence")
	}
}

func (r *turtleReader) readHexN(n int) (int, error) {
	val := 0
	for i := 0; i < n; i++ {
		b, ok := r.src.Peek()
		if !ok || !runeclass.IsHexDigit(b) {
			return 0, r.fail(ErrBadSyntax, "invalid hex escape")
		}
		val = val*16 + runeclass.HexVal(b)
		r.src.Advance()
	}
	return val, nil
}

// langtag parses LANGTAG's body (the leading '@' already consumed).
func (r *turtleReader) langtag() (string, error) {
	var buf []byte
	b, ok := r.src.Peek()
	if !ok || !isAlphaByte(b) {
		return "", r.fail(ErrBadSyntax, "invalid language tag")
	}
	for {
		b, ok := r.src.Peek()
		if !ok || !isAlphaByte(b) {
			break
		}
		buf = append(buf, b)
		r.src.Advance()
	}
	for {
		b, ok := r.src.Peek()
		if !ok || b != '-' {
			break
		}
		nb, ok2 := r.src.PeekAt(1)
		if !ok2 || !isAlnumByte(nb) {
			break
		}
		buf = append(buf, '-')
		r.src.Advance()
		for {
			b2, ok3 := r.src.Peek()
			if !ok3 || !isAlnumByte(b2) {
				break
			}
			buf = append(buf, b2)
			r.src.Advance()
		}
	}
	return string(buf), nil
}

// numericLiteral parses "number": integer, decimal, or double,
// disambiguated by the presence of a fractional point and an exponent.
func (r *turtleReader) numericLiteral() (Term, termShape, error) {
	var buf []byte
	if b, ok := r.src.Peek(); ok && (b == '+' || b == '-') {
		buf = append(buf, b)
		r.src.Advance()
	}
	sawDigits := false
	for {
		b, ok := r.src.Peek()
		if !ok || !isDigitByte(b) {
			break
		}
		buf = append(buf, b)
		r.src.Advance()
		sawDigits = true
	}
	isDecimal := false
	if b, ok := r.src.Peek(); ok && b == '.' {
		if nb, ok2 := r.src.PeekAt(1); ok2 && isDigitByte(nb) {
			isDecimal = true
			buf = append(buf, '.')
			r.src.Advance()
			for {
				b2, ok3 := r.src.Peek()
				if !ok3 || !isDigitByte(b2) {
					break
				}
				buf = append(buf, b2)
				r.src.Advance()
			}
		} else if !sawDigits {
			return nil, shapePlain, r.fail(ErrBadSyntax, "invalid number")
		}
	}
	isDouble := false
	if b, ok := r.src.Peek(); ok && (b == 'e' || b == 'E') {
		i := 1
		if nb, ok2 := r.src.PeekAt(1); ok2 && (nb == '+' || nb == '-') {
			i = 2
		}
		if nb, ok2 := r.src.PeekAt(i); ok2 && isDigitByte(nb) {
			isDouble = true
			buf = append(buf, b)
			r.src.Advance()
			if nb2, ok3 := r.src.Peek(); ok3 && (nb2 == '+' || nb2 == '-') {
				buf = append(buf, nb2)
				r.src.Advance()
			}
			for {
				b2, ok3 := r.src.Peek()
				if !ok3 || !isDigitByte(b2) {
					break
				}
				buf = append(buf, b2)
				r.src.Advance()
			}
		}
	}
	if !sawDigits && !isDecimal {
		return nil, shapePlain, r.fail(ErrBadSyntax, "invalid number")
	}
	lex, err := r.commit(buf)
	if err != nil {
		return nil, shapePlain, err
	}
	var datatype string
	switch {
	case isDouble:
		datatype = xsdDoubleIRI
	case isDecimal:
		datatype = xsdDecimalIRI
	default:
		datatype = xsdIntegerIRI
	}
	lit, _ := NewTypedLiteral(lex, datatype)
	return lit, shapePlain, nil
}

// variable parses the AllowVariables extension: '?'/'$' followed by a
// PN_LOCAL-shaped name.
func (r *turtleReader) variable() (Term, error) {
	r.src.Advance() // '?' or '$'
	name, err := r.scanDotTrimmedRun(isBlankLabelFirst, runeclass.PNChars)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, r.fail(ErrBadSyntax, "empty variable name")
	}
	return Variable{Name: name}, nil
}

// prefixedName parses PrefixedName: PNAME_LN or PNAME_NS used as a
// term, resolved eagerly against the environment.
func (r *turtleReader) prefixedName() (Term, error) {
	prefix, err := r.readPNPrefixOrEmpty()
	if err != nil {
		return nil, err
	}
	if err := r.expectByte(':'); err != nil {
		return nil, r.fail(ErrBadSyntax, "expected ':' in prefixed name")
	}
	local, err := r.scanPNLocal()
	if err != nil {
		return nil, err
	}
	ns, ok := r.env.Prefix(prefix)
	if !ok {
		return nil, r.fail(ErrBadSyntax, fmt.Sprintf("undefined prefix %q", prefix))
	}
	return IRI{Value: ns + local}, nil
}

func (r *turtleReader) readPNPrefixOrEmpty() (string, error) {
	if b, ok := r.src.Peek(); ok && b == ':' {
		return "", nil
	}
	return r.scanDotTrimmedRun(runeclass.PNCharsBase, runeclass.PNChars)
}

// scanDotTrimmedRun reads a run of codepoints satisfying firstClass
// (for the first codepoint) then contClass, with '.' always permitted
// mid-run but never as the final character — the shared shape of
// PN_PREFIX and BLANK_NODE_LABEL. It never consumes more of the source
// than ends up in the result: PeekAt-based lookahead lets it decide the
// trimmed length before calling Advance.
func (r *turtleReader) scanDotTrimmedRun(firstClass, contClass func(rune) bool) (string, error) {
	var raw []byte
	pos := 0
	first := true
	for {
		b, ok := r.src.PeekAt(pos)
		if !ok {
			break
		}
		if b == '.' {
			raw = append(raw, '.')
			pos++
			continue
		}
		n := runeclass.NumBytes(b)
		if n == 0 {
			break
		}
		var tmp [4]byte
		okAll := true
		for i := 0; i < n; i++ {
			nb, o := r.src.PeekAt(pos + i)
			if !o {
				okAll = false
				break
			}
			tmp[i] = nb
		}
		if !okAll {
			break
		}
		cp, decOK := runeclass.DecodeCounted(tmp[:n], n)
		if !decOK {
			break
		}
		class := contClass
		if first {
			class = firstClass
		}
		if !class(cp) {
			break
		}
		raw = append(raw, tmp[:n]...)
		pos += n
		first = false
	}
	end := len(raw)
	for end > 0 && raw[end-1] == '.' {
		end--
	}
	for i := 0; i < end; i++ {
		r.src.Advance()
	}
	return r.commit(raw[:end])
}

// pnUnit is one decoded element of a PN_LOCAL scan: its output bytes,
// how many source bytes it consumed, and whether it was an unescaped
// '.' (and therefore eligible for end-of-run trimming).
type pnUnit struct {
	out      []byte
	src      int
	plainDot bool
}

// scanPNLocal parses PN_LOCAL: like scanDotTrimmedRun but also
// accepting ':' and the PLX escapes (PERCENT, PN_LOCAL_ESC).
func (r *turtleReader) scanPNLocal() (string, error) {
	var units []pnUnit
	pos := 0
	first := true
loop:
	for {
		b, ok := r.src.PeekAt(pos)
		if !ok {
			break
		}
		switch {
		case b == '.':
			units = append(units, pnUnit{out: []byte{'.'}, src: 1, plainDot: true})
			pos++
			first = false
		case b == '%':
			h1, ok1 := r.src.PeekAt(pos + 1)
			h2, ok2 := r.src.PeekAt(pos + 2)
			if !ok1 || !ok2 || !runeclass.IsHexDigit(h1) || !runeclass.IsHexDigit(h2) {
				break loop
			}
			units = append(units, pnUnit{out: []byte{'%', h1, h2}, src: 3})
			pos += 3
			first = false
		case b == '\\':
			nb, ok1 := r.src.PeekAt(pos + 1)
			if !ok1 || !isPNLocalEscChar(nb) {
				break loop
			}
			units = append(units, pnUnit{out: []byte{nb}, src: 2})
			pos += 2
			first = false
		case b == ':':
			units = append(units, pnUnit{out: []byte{':'}, src: 1})
			pos++
			first = false
		default:
			n := runeclass.NumBytes(b)
			if n == 0 {
				break loop
			}
			var tmp [4]byte
			okAll := true
			for i := 0; i < n; i++ {
				nb, o := r.src.PeekAt(pos + i)
				if !o {
					okAll = false
					break
				}
				tmp[i] = nb
			}
			if !okAll {
				break loop
			}
			cp, decOK := runeclass.DecodeCounted(tmp[:n], n)
			if !decOK {
				break loop
			}
			var okChar bool
			if first {
				okChar = runeclass.PNCharsBase(cp) || cp == '_' || (cp >= '0' && cp <= '9')
			} else {
				okChar = runeclass.PNChars(cp)
			}
			if !okChar {
				break loop
			}
			out := make([]byte, n)
			copy(out, tmp[:n])
			units = append(units, pnUnit{out: out, src: n})
			pos += n
			first = false
		}
	}
	for len(units) > 0 && units[len(units)-1].plainDot {
		units = units[:len(units)-1]
	}
	var out []byte
	advance := 0
	for _, u := range units {
		out = append(out, u.out...)
		advance += u.src
	}
	for i := 0; i < advance; i++ {
		r.src.Advance()
	}
	return r.commit(out)
}

func isPNLocalEscChar(b byte) bool {
	switch b {
	case '_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '/', '?', '#', '@', '%':
		return true
	default:
		return false
	}
}

// commit copies buf into the arena and hands back the arena-owned
// string, the boundary the spec's resource model draws between
// parser-stack bytes and caller-owned data. A full arena surfaces as
// ErrBadStack, the BAD_STACK condition of §7.
func (r *turtleReader) commit(buf []byte) (string, error) {
	h, err := r.arena.Push(scratchKind, buf, 0)
	if err != nil {
		return "", r.fail(ErrBadStack, "parser arena exhausted")
	}
	return r.arena.String(h), nil
}

func (r *turtleReader) emitStatement(s, p, o, g Term, flags StatementFlags) {
	r.emitRaw(Event{Kind: EventStatement, Flags: flags, S: s, P: p, O: o, G: g})
}

func (r *turtleReader) emitRaw(ev Event) {
	ev.Caret = r.caretPtr()
	r.queue = append(r.queue, ev)
}

func (r *turtleReader) expectByte(want byte) error {
	b, ok := r.src.Peek()
	if !ok || b != want {
		return r.fail(ErrBadSyntax, fmt.Sprintf("expected %q", want))
	}
	r.src.Advance()
	return nil
}

func (r *turtleReader) consumeDot() error {
	r.skipWS()
	return r.expectByte('.')
}

func (r *turtleReader) skipWS() {
	for {
		b, ok := r.src.Peek()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			r.src.Advance()
		case '#':
			r.src.SkipToNewline()
		default:
			return
		}
	}
}

// tryKeywordBoundary consumes word (case-sensitive or not) if it
// appears next and is followed by a non-identifier byte — so "BASE"
// doesn't misfire on a prefixed name like "BASE:x" or "BASEd:x".
func (r *turtleReader) tryKeywordBoundary(word string, caseSensitive bool) bool {
	for i := 0; i < len(word); i++ {
		b, ok := r.src.PeekAt(i)
		if !ok {
			return false
		}
		w := word[i]
		if caseSensitive {
			if b != w {
				return false
			}
		} else if toUpperASCII(b) != toUpperASCII(w) {
			return false
		}
	}
	if nb, ok := r.src.PeekAt(len(word)); ok {
		if isIdentContinuationByte(nb) || nb == ':' {
			return false
		}
	}
	for i := 0; i < len(word); i++ {
		r.src.Advance()
	}
	return true
}

func (r *turtleReader) fail(sentinel error, msg string) *ParseError {
	pos := r.src.Pos()
	return newParseError(Caret{Doc: r.src.Name(), Line: pos.Line, Col: pos.Col}, fmt.Errorf("%w: %s", sentinel, msg))
}

func (r *turtleReader) caretPtr() *Caret {
	pos := r.src.Pos()
	return &Caret{Doc: r.src.Name(), Line: pos.Line, Col: pos.Col}
}

func isAlphaByte(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isAlnumByte(b byte) bool { return isAlphaByte(b) || isDigitByte(b) }

func toUpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func isIdentContinuationByte(b byte) bool {
	switch {
	case isAlnumByte(b), b == '_', b == '-':
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}
