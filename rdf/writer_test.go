package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAll(t *testing.T, syntax Format, style WriterStyle, fn func(w *Writer)) string {
	t.Helper()
	var buf strings.Builder
	w := NewWriter(&buf, syntax, style)
	fn(w)
	require.NoError(t, w.End())
	require.NoError(t, w.Flush())
	return buf.String()
}

func TestWriterAbbreviatesRDFTypeAsA(t *testing.T) {
	out := writeAll(t, FormatTurtle, WriterStyle{}, func(w *Writer) {
		require.NoError(t, w.WriteStatement(NewTriple(
			IRI{Value: "urn:s"}, IRI{Value: RDFType}, IRI{Value: "urn:Thing"},
		)))
	})
	assert.Contains(t, out, " a <urn:Thing>")
}

func TestWriterGroupsSameSubjectPredicateWithComma(t *testing.T) {
	out := writeAll(t, FormatTurtle, WriterStyle{}, func(w *Writer) {
		s := IRI{Value: "urn:s"}
		p := IRI{Value: "urn:p"}
		require.NoError(t, w.WriteStatement(NewTriple(s, p, IRI{Value: "urn:o1"})))
		require.NoError(t, w.WriteStatement(NewTriple(s, p, IRI{Value: "urn:o2"})))
	})
	assert.Contains(t, out, "<urn:o1> , <urn:o2>")
}

func TestWriterGroupsSameSubjectWithSemicolon(t *testing.T) {
	out := writeAll(t, FormatTurtle, WriterStyle{}, func(w *Writer) {
		s := IRI{Value: "urn:s"}
		require.NoError(t, w.WriteStatement(NewTriple(s, IRI{Value: "urn:p1"}, IRI{Value: "urn:o1"})))
		require.NoError(t, w.WriteStatement(NewTriple(s, IRI{Value: "urn:p2"}, IRI{Value: "urn:o2"})))
	})
	assert.Contains(t, out, " ;\n")
}

func TestWriterAbbreviatesAnonObject(t *testing.T) {
	out := writeAll(t, FormatTurtle, WriterStyle{}, func(w *Writer) {
		s := IRI{Value: "urn:s"}
		p := IRI{Value: "urn:p"}
		b := Blank{ID: "b1"}
		require.NoError(t, w.WriteStatement(Statement{S: s, P: p, O: b, Flags: FlagAnonO}))
		require.NoError(t, w.WriteStatement(NewTriple(b, IRI{Value: "urn:q"}, IRI{Value: "urn:o"})))
		require.NoError(t, w.EndAnon(b))
	})
	assert.Contains(t, out, "[")
	assert.Contains(t, out, "]")
	assert.NotContains(t, out, "_:b1")
}

func TestWriterAbbreviatesEmptyListAsNil(t *testing.T) {
	out := writeAll(t, FormatTurtle, WriterStyle{}, func(w *Writer) {
		require.NoError(t, w.WriteStatement(Statement{
			S: IRI{Value: "urn:s"}, P: IRI{Value: "urn:p"}, O: IRI{Value: RDFNil}, Flags: FlagListO,
		}))
	})
	assert.Contains(t, out, "()")
}

func TestWriterNTriplesNeverAbbreviates(t *testing.T) {
	out := writeAll(t, FormatNTriples, WriterStyle{}, func(w *Writer) {
		require.NoError(t, w.WriteStatement(NewTriple(
			IRI{Value: "urn:s"}, IRI{Value: RDFType}, IRI{Value: "urn:Thing"},
		)))
	})
	assert.NotContains(t, out, " a ")
	assert.Contains(t, out, "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>")
}

func TestWriterEmitsPrefixedCURIE(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf, FormatTurtle, WriterStyle{})
	require.NoError(t, w.Prefix("ex", "http://example.org/"))
	require.NoError(t, w.WriteStatement(NewTriple(
		IRI{Value: "http://example.org/s"}, IRI{Value: "http://example.org/p"}, IRI{Value: "http://example.org/o"},
	)))
	require.NoError(t, w.End())
	require.NoError(t, w.Flush())
	out := buf.String()
	assert.Contains(t, out, "@prefix ex: <http://example.org/> .")
	assert.Contains(t, out, "ex:s")
}

func TestWriterRejectsEndOnOpenBracket(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf, FormatTurtle, WriterStyle{})
	require.NoError(t, w.WriteStatement(Statement{
		S: IRI{Value: "urn:s"}, P: IRI{Value: "urn:p"}, O: Blank{ID: "b1"}, Flags: FlagAnonO,
	}))
	err := w.End()
	assert.Error(t, err, "ending a document with an unclosed anonymous node must fail")
}
