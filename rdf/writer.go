package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/turtlestream/rdf/internal/iriref"
	"github.com/turtlestream/rdf/internal/runeclass"
)

// bracketKind distinguishes the two shapes of nested context a Writer
// can have open on its saved-context stack: an anonymous node's
// property list, or a collection's rdf:first/rdf:rest chain.
type bracketKind uint8

const (
	bracketAnon bracketKind = iota
	bracketList
)

// bracketFrame is one entry of the writer's nested-context stack (spec
// §4.H: "a stack of saved contexts"). For an anon frame, node is the
// blank whose body is currently open. For a list frame, node is
// whichever chain link the writer currently expects to see as the next
// statement's subject; it is rewritten in place as the chain advances.
type bracketFrame struct {
	kind         bracketKind
	node         string
	subject      Term
	predicate    Term
	havePred     bool
	wroteAnyPred bool
}

// Writer is a stateful streaming Turtle-family pretty-printer, per spec
// §4.H. It is fed one Statement at a time via WriteStatement; object-
// position anonymous nodes and collections are abbreviated
// automatically using the StatementFlags the parser produces (or that
// a caller assembling statements by hand sets the same way). A subject-
// position anon/collection round-trips correctly but is rendered with
// its ordinary blank-node label rather than re-opened brackets, since
// by the time such a statement arrives its body has already been
// streamed and closed — see DESIGN.md.
type Writer struct {
	w      *bufio.Writer
	syntax Format
	style  WriterStyle
	env    *PrefixEnv
	root   iriref.Ref
	hasRoot bool

	curGraph    Term
	graphOpen   bool
	curSubject  Term
	curPred     Term
	haveSubject bool
	havePred    bool

	stack []bracketFrame

	wroteStatement bool
	err            error
}

// NewWriter constructs a Writer for the given syntax. style selects the
// non-normative formatting knobs of §9; its zero value is normalized
// the same way Options.normalized() handles parser options.
func NewWriter(w io.Writer, syntax Format, style WriterStyle) *Writer {
	style = style.normalized()
	wr := &Writer{
		w:      bufio.NewWriter(w),
		syntax: syntax,
		style:  style,
		env:    NewPrefixEnv(),
	}
	if style.RootURI != "" {
		wr.SetRoot(style.RootURI)
	}
	return wr
}

// SetBase sets the writer's base IRI, emitting "@base <…> ." in
// Turtle/TriG; in N-Triples/N-Quads the environment is updated
// silently (directives are forbidden in those syntaxes).
func (wr *Writer) SetBase(base string) error {
	wr.env.SetBase(base)
	if wr.syntax.IsLineOriented() {
		return nil
	}
	return wr.writeDirective(fmt.Sprintf("@base <%s> .\n", wr.escapeIRI(base)))
}

// SetRoot bounds URI relativization (style.Resolved) to the given
// subtree: the writer never emits a relative reference that would
// escape it.
func (wr *Writer) SetRoot(root string) {
	wr.root = iriref.Split(root)
	wr.hasRoot = true
}

// Prefix binds a prefix, emitting "@prefix name: <…> ." in Turtle/TriG.
func (wr *Writer) Prefix(name, iri string) error {
	wr.env.SetPrefix(name, iri)
	if wr.syntax.IsLineOriented() {
		return nil
	}
	label := name + ":"
	if name == "" {
		label = ":"
	}
	return wr.writeDirective(fmt.Sprintf("@prefix %s <%s> .\n", label, wr.escapeIRI(iri)))
}

func (wr *Writer) writeDirective(s string) error {
	if wr.err != nil {
		return wr.err
	}
	if _, err := wr.w.WriteString(s); err != nil {
		wr.err = fmt.Errorf("%w: %v", ErrBadWrite, err)
		return wr.err
	}
	return nil
}

// End finalizes the document: terminates the last open statement group
// with " ." and closes any open TriG graph block. It does not flush;
// call Flush (or rely on a subsequent Flush) afterward.
func (wr *Writer) End() error {
	if wr.err != nil {
		return wr.err
	}
	if len(wr.stack) != 0 {
		wr.err = fmt.Errorf("%w: document ended with an open anonymous node or collection", ErrBadArg)
		return wr.err
	}
	if wr.wroteStatement && !wr.syntax.IsLineOriented() {
		if err := wr.writeRaw(" .\n"); err != nil {
			return err
		}
		wr.wroteStatement = false
		wr.haveSubject = false
		wr.havePred = false
	}
	if wr.graphOpen {
		if wr.syntax == FormatTriG {
			if err := wr.writeRaw("}\n"); err != nil {
				return err
			}
		}
		wr.graphOpen = false
		wr.curGraph = nil
	}
	return nil
}

// Flush flushes buffered output to the underlying io.Writer.
func (wr *Writer) Flush() error {
	if wr.err != nil {
		return wr.err
	}
	if err := wr.w.Flush(); err != nil {
		wr.err = fmt.Errorf("%w: %v", ErrBadWrite, err)
		return wr.err
	}
	return nil
}

// EndAnon closes the innermost open anonymous-node context, which must
// currently be node. Per §4.H: popping restores the saved subject and
// predicate so a following WriteStatement sharing them continues with
// ',' as expected.
func (wr *Writer) EndAnon(node Term) error {
	if wr.err != nil {
		return wr.err
	}
	if len(wr.stack) == 0 {
		wr.err = fmt.Errorf("%w: end_anon with no matching begin", ErrBadArg)
		return wr.err
	}
	top := wr.stack[len(wr.stack)-1]
	if top.kind != bracketAnon || top.node != node.Lexical() {
		wr.err = fmt.Errorf("%w: end_anon does not match innermost open node", ErrBadArg)
		return wr.err
	}
	wr.stack = wr.stack[:len(wr.stack)-1]
	if err := wr.writeRaw("]"); err != nil {
		return err
	}
	wr.restoreAfterPop(top)
	return nil
}

func (wr *Writer) restoreAfterPop(top bracketFrame) {
	if len(wr.stack) == 0 {
		wr.curSubject = top.subject
		wr.curPred = top.predicate
		wr.haveSubject = top.subject != nil
		wr.havePred = top.havePred
	}
}

// WriteStatement emits one statement, folding it into whatever nested
// bracket context is currently open, or starting a new top-level
// subject/predicate/object group.
func (wr *Writer) WriteStatement(s Statement) error {
	if wr.err != nil {
		return wr.err
	}
	if err := s.Valid(); err != nil {
		wr.err = err
		return err
	}
	if len(wr.stack) > 0 {
		return wr.writeNested(s)
	}
	if err := wr.syncGraph(s.G); err != nil {
		return err
	}
	return wr.writeTopLevel(s)
}

// syncGraph closes the previously open TriG graph block (if any) and
// opens a new one when the statement's graph differs, per §4.H's
// GRAPH_BEGIN/GRAPH_END separators. Only meaningful for TriG/N-Quads;
// Turtle/N-Triples never carry a graph term worth wrapping.
func (wr *Writer) syncGraph(g Term) error {
	if !wr.syntax.IsQuadFormat() {
		return nil
	}
	sameGraph := (g == nil && wr.curGraph == nil) || (g != nil && wr.curGraph != nil && Equal(g, wr.curGraph))
	if sameGraph {
		return nil
	}
	if wr.graphOpen {
		if wr.syntax == FormatTriG {
			if err := wr.writeRaw("}\n"); err != nil {
				return err
			}
		}
		wr.graphOpen = false
		wr.haveSubject = false
		wr.havePred = false
	}
	wr.curGraph = g
	if g == nil {
		return nil
	}
	if wr.syntax == FormatTriG {
		label := wr.renderTerm(g)
		if err := wr.writeRaw(label + " {\n"); err != nil {
			return err
		}
	}
	wr.graphOpen = true
	return nil
}

func (wr *Writer) writeTopLevel(s Statement) error {
	if wr.syntax.IsLineOriented() {
		return wr.writeLineOriented(s)
	}
	switch {
	case wr.haveSubject && wr.havePred && Equal(wr.curSubject, s.S) && Equal(wr.curPred, s.P):
		if err := wr.writeRaw(" , "); err != nil {
			return err
		}
	case wr.haveSubject && Equal(wr.curSubject, s.S):
		if err := wr.writeRaw(" ;\n" + wr.style.Indent); err != nil {
			return err
		}
		if err := wr.writeRaw(wr.renderPredicate(s.P) + " "); err != nil {
			return err
		}
	default:
		if wr.wroteStatement {
			end := " .\n"
			if wr.style.BlankLineBetweenSubjects {
				end = " .\n\n"
			}
			if err := wr.writeRaw(end); err != nil {
				return err
			}
		}
		if err := wr.writeRaw(wr.renderTerm(s.S) + " " + wr.renderPredicate(s.P) + " "); err != nil {
			return err
		}
	}
	wr.curSubject = s.S
	wr.curPred = s.P
	wr.haveSubject = true
	wr.havePred = true
	wr.wroteStatement = true
	return wr.writeObject(s.S, s.P, s.O, s.Flags)
}

// writeLineOriented emits one full "S P O G? ." line, per N-Triples/
// N-Quads' rule that every statement stands alone (no subject/
// predicate joining, no anon/collection sugar).
func (wr *Writer) writeLineOriented(s Statement) error {
	line := wr.renderTerm(s.S) + " " + wr.renderTerm(s.P) + " " + wr.renderTerm(s.O)
	if s.G != nil && wr.syntax == FormatNQuads {
		line += " " + wr.renderTerm(s.G)
	}
	wr.wroteStatement = true
	return wr.writeRaw(line + " .\n")
}

// writeNested handles a statement whose subject belongs to the
// innermost open bracket: an anon body entry, or the next first/rest
// link of an open collection.
func (wr *Writer) writeNested(s Statement) error {
	top := &wr.stack[len(wr.stack)-1]
	switch top.kind {
	case bracketList:
		return wr.writeListLink(top, s)
	default:
		return wr.writeAnonBody(top, s)
	}
}

func (wr *Writer) writeAnonBody(top *bracketFrame, s Statement) error {
	if s.S.Lexical() != top.node || s.S.Kind() != KindBlank {
		wr.err = fmt.Errorf("%w: statement subject does not match open anon node", ErrBadArg)
		return wr.err
	}
	switch {
	case top.havePred && Equal(top.predicate, s.P):
		if err := wr.writeRaw(" , "); err != nil {
			return err
		}
	case top.wroteAnyPred:
		if err := wr.writeRaw(" ; "); err != nil {
			return err
		}
		if err := wr.writeRaw(wr.renderPredicate(s.P) + " "); err != nil {
			return err
		}
	default:
		if err := wr.writeRaw(wr.renderPredicate(s.P) + " "); err != nil {
			return err
		}
	}
	top.predicate = s.P
	top.havePred = true
	top.wroteAnyPred = true
	return wr.writeObject(s.S, s.P, s.O, s.Flags)
}

func (wr *Writer) writeListLink(top *bracketFrame, s Statement) error {
	if s.S.Lexical() != top.node || s.S.Kind() != KindBlank {
		wr.err = fmt.Errorf("%w: statement subject does not match open list link", ErrBadArg)
		return wr.err
	}
	iri, ok := s.P.(IRI)
	if !ok {
		wr.err = fmt.Errorf("%w: list chain predicate must be rdf:first or rdf:rest", ErrBadArg)
		return wr.err
	}
	switch iri.Value {
	case RDFFirst:
		if top.wroteAnyPred {
			if err := wr.writeRaw(" "); err != nil {
				return err
			}
		}
		top.wroteAnyPred = true
		return wr.writeObject(s.S, s.P, s.O, s.Flags)
	case RDFRest:
		if nilIRI, isIRI := s.O.(IRI); isIRI && nilIRI.Value == RDFNil {
			wr.stack = wr.stack[:len(wr.stack)-1]
			if err := wr.writeRaw(")"); err != nil {
				return err
			}
			wr.restoreAfterPop(*top)
			return nil
		}
		top.node = s.O.Lexical()
		return nil
	default:
		wr.err = fmt.Errorf("%w: unexpected predicate inside collection", ErrBadArg)
		return wr.err
	}
}

// writeObject renders the object term of a statement, opening a nested
// bracket and pushing it onto the stack instead of printing a blank
// label when flags mark the object as a non-empty anonymous node or
// collection.
func (wr *Writer) writeObject(subject, predicate, object Term, flags StatementFlags) error {
	switch {
	case flags&FlagEmptyO != 0:
		return wr.writeRaw("[]")
	case flags&FlagListO != 0 && isRDFNil(object):
		return wr.writeRaw("()")
	case flags&FlagAnonO != 0:
		wr.stack = append(wr.stack, bracketFrame{
			kind: bracketAnon, node: object.Lexical(),
			subject: subject, predicate: predicate, havePred: true,
		})
		return wr.writeRaw("[ ")
	case flags&FlagListO != 0:
		wr.stack = append(wr.stack, bracketFrame{
			kind: bracketList, node: object.Lexical(),
			subject: subject, predicate: predicate, havePred: true,
		})
		return wr.writeRaw("(")
	default:
		return wr.writeRaw(wr.renderTerm(object))
	}
}

func isRDFNil(t Term) bool {
	iri, ok := t.(IRI)
	return ok && iri.Value == RDFNil
}

func (wr *Writer) writeRaw(s string) error {
	if wr.err != nil {
		return wr.err
	}
	if _, err := wr.w.WriteString(s); err != nil {
		wr.err = fmt.Errorf("%w: %v", ErrBadWrite, err)
		return wr.err
	}
	return nil
}

// renderPredicate abbreviates rdf:type to "a" in Turtle/TriG.
func (wr *Writer) renderPredicate(p Term) string {
	if !wr.syntax.IsLineOriented() {
		if iri, ok := p.(IRI); ok && iri.Value == RDFType {
			return "a"
		}
	}
	return wr.renderTerm(p)
}

// renderTerm renders any term per the abbreviation policy of §4.H.
func (wr *Writer) renderTerm(t Term) string {
	switch v := t.(type) {
	case IRI:
		return wr.renderIRI(v.Value)
	case CURIE:
		return v.Prefix + ":" + v.Local
	case Blank:
		return "_:" + v.ID
	case Literal:
		return wr.renderLiteral(v)
	case Variable:
		return "?" + v.Name
	default:
		return ""
	}
}

func (wr *Writer) renderIRI(value string) string {
	out := value
	if wr.style.Resolved {
		if base, ok := wr.env.Base(); ok {
			abs := value
			ref := iriref.Split(value)
			if !ref.IsAbsolute() {
				abs = iriref.Resolve(ref, iriref.Split(base)).String()
			}
			var root *iriref.Ref
			if wr.hasRoot {
				root = &wr.root
			}
			out = iriref.Relativize(iriref.Split(abs), iriref.Split(base), root)
		}
	}
	if !wr.syntax.IsLineOriented() {
		if prefix, local, ok := wr.env.LookupPrefixFor(out); ok && isValidPNLocal(local) {
			if prefix == "" {
				return ":" + local
			}
			return prefix + ":" + local
		}
	}
	return "<" + wr.escapeIRI(out) + ">"
}

func (wr *Writer) renderLiteral(lit Literal) string {
	if lit.Lang != "" {
		return wr.renderString(lit.Value) + "@" + lit.Lang
	}
	if lit.Datatype != nil {
		if !wr.syntax.IsLineOriented() {
			switch {
			case lit.isXSDBoolean():
				return lit.Value
			case lit.isXSDInteger():
				return lit.Value
			case lit.isXSDDecimal():
				return lit.Value
			}
		}
		return wr.renderString(lit.Value) + "^^" + wr.renderIRI(lit.Datatype.Value)
	}
	return wr.renderString(lit.Value)
}

// renderString chooses short- vs long-string form per §4.H: long form
// when the value contains a newline or a quote.
func (wr *Writer) renderString(s string) string {
	if strings.ContainsAny(s, "\n\"") {
		return wr.renderLongString(s)
	}
	return wr.renderShortString(s)
}

func (wr *Writer) renderShortString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	wr.escapeInto(&b, s, false)
	b.WriteByte('"')
	return b.String()
}

func (wr *Writer) renderLongString(s string) string {
	var b strings.Builder
	b.WriteString(`"""`)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '"' {
			// A run of quotes (or a trailing quote) would collide with the
			// closing delimiter; escape it whenever it's the last rune or
			// part of a doubled/tripled sequence.
			isLast := i == len(runes)-1
			isRunOfTwo := i+1 < len(runes) && runes[i+1] == '"'
			if isLast || isRunOfTwo {
				b.WriteString(`\"`)
				continue
			}
		}
		wr.escapeRuneInto(&b, r, true)
	}
	b.WriteString(`"""`)
	return b.String()
}

func (wr *Writer) escapeInto(b *strings.Builder, s string, long bool) {
	for _, r := range s {
		wr.escapeRuneInto(b, r, long)
	}
}

func (wr *Writer) escapeRuneInto(b *strings.Builder, r rune, long bool) {
	switch r {
	case '\\':
		b.WriteString(`\\`)
		return
	case '"':
		b.WriteString(`\"`)
		return
	case '\t':
		b.WriteString(`\t`)
		return
	case '\b':
		b.WriteString(`\b`)
		return
	case '\r':
		b.WriteString(`\r`)
		return
	case '\f':
		b.WriteString(`\f`)
		return
	case '\n':
		if long {
			b.WriteByte('\n')
			return
		}
		b.WriteString(`\n`)
		return
	}
	if r == runeclass.ReplacementChar || r < 0x20 {
		fmt.Fprintf(b, "\\u%04X", r)
		return
	}
	if r < 0x80 {
		b.WriteRune(r)
		return
	}
	if wr.style.ASCII {
		if r > 0xFFFF {
			fmt.Fprintf(b, "\\U%08X", r)
		} else {
			fmt.Fprintf(b, "\\u%04X", r)
		}
		return
	}
	b.WriteRune(r)
}

// escapeIRI applies the URI escaping context of §4.H: the reserved set
// {space " < > \ ^ ` { | }} is percent-encoded, plus the ASCII-mode
// non-ASCII escaping shared with string contexts.
func (wr *Writer) escapeIRI(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '"', '<', '>', '\\', '^', '`', '{', '|', '}':
			fmt.Fprintf(&b, "%%%02X", r)
			continue
		}
		if r < 0x20 {
			fmt.Fprintf(&b, "\\u%04X", r)
			continue
		}
		if r >= 0x80 && wr.style.ASCII {
			if r > 0xFFFF {
				fmt.Fprintf(&b, "\\U%08X", r)
			} else {
				fmt.Fprintf(&b, "\\u%04X", r)
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isValidPNLocal reports whether local can be emitted unescaped (or
// with only the percent/backslash escapes PN_LOCAL already permits) as
// the local part of a CURIE, per §4.H's "both prefix and local parts
// are valid PN tokens" abbreviation condition.
func isValidPNLocal(local string) bool {
	if local == "" {
		return true
	}
	if strings.HasSuffix(local, ".") {
		return false
	}
	runes := []rune(local)
	first := runes[0]
	if !(runeclass.PNCharsBase(first) || first == '_' || (first >= '0' && first <= '9') || first == ':' || first == '%' || first == '\\') {
		return false
	}
	for _, r := range runes {
		if runeclass.PNChars(r) || r == ':' || r == '%' || r == '\\' || r == '.' {
			continue
		}
		return false
	}
	return true
}
