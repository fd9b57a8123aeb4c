package describe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtlestream/rdf"
	"github.com/turtlestream/rdf/store"
)

func iri(v string) rdf.IRI   { return rdf.IRI{Value: v} }
func blank(id string) rdf.Blank { return rdf.Blank{ID: id} }

func renderTraverse(t *testing.T, stmts []rdf.Statement, p Profile) string {
	t.Helper()
	m := store.New()
	for _, s := range stmts {
		require.NoError(t, m.Insert(s))
	}
	var buf strings.Builder
	w := rdf.NewWriter(&buf, rdf.FormatTurtle, p.WriterStyle())
	root := m.Find(rdf.Pattern{})
	require.NoError(t, Traverse(m, root, w, p))
	return buf.String()
}

func TestTraverseNamedSubjectPlain(t *testing.T) {
	out := renderTraverse(t, []rdf.Statement{
		{S: iri("urn:alice"), P: rdf.IRI{Value: rdf.RDFType}, O: iri("urn:Person")},
		{S: iri("urn:alice"), P: iri("urn:name"), O: rdf.NewLiteral("Alice")},
	}, Profile{TypeFirst: true})

	assert.Contains(t, out, "<urn:alice>")
	assert.Contains(t, out, " a <urn:Person>")
}

func TestTraverseInlinesSingleUseAnonObject(t *testing.T) {
	b := blank("b1")
	out := renderTraverse(t, []rdf.Statement{
		{S: iri("urn:alice"), P: iri("urn:address"), O: b, Flags: rdf.FlagAnonO},
		{S: b, P: iri("urn:city"), O: rdf.NewLiteral("Oslo")},
	}, Profile{})

	assert.Contains(t, out, "[")
	assert.Contains(t, out, "<urn:city>")
	assert.NotContains(t, out, "_:b1", "a singly-referenced blank must be inlined, not printed under its own label")
}

func TestTraverseDoesNotInlineMultiplyReferencedBlank(t *testing.T) {
	b := blank("shared")
	out := renderTraverse(t, []rdf.Statement{
		{S: iri("urn:alice"), P: iri("urn:knows"), O: b},
		{S: iri("urn:bob"), P: iri("urn:knows"), O: b},
		{S: b, P: rdf.IRI{Value: rdf.RDFType}, O: iri("urn:Person")},
	}, Profile{})

	assert.Contains(t, out, "_:shared", "a blank referenced twice can't be inlined without duplicating its body")
}

func TestTraverseInlinesListObject(t *testing.T) {
	head := blank("l1")
	tail := blank("l2")
	out := renderTraverse(t, []rdf.Statement{
		{S: iri("urn:alice"), P: iri("urn:favorites"), O: head, Flags: rdf.FlagListO},
		{S: head, P: rdf.IRI{Value: rdf.RDFFirst}, O: rdf.NewLiteral("a")},
		{S: head, P: rdf.IRI{Value: rdf.RDFRest}, O: tail},
		{S: tail, P: rdf.IRI{Value: rdf.RDFFirst}, O: rdf.NewLiteral("b")},
		{S: tail, P: rdf.IRI{Value: rdf.RDFRest}, O: rdf.IRI{Value: rdf.RDFNil}},
	}, Profile{})

	assert.Contains(t, out, "(")
	assert.Contains(t, out, "\"a\"")
	assert.Contains(t, out, "\"b\"")
}

func TestTraverseRepairsMisterminatedList(t *testing.T) {
	head := blank("l1")
	out := renderTraverse(t, []rdf.Statement{
		{S: iri("urn:alice"), P: iri("urn:favorites"), O: head, Flags: rdf.FlagListO},
		{S: head, P: rdf.IRI{Value: rdf.RDFFirst}, O: rdf.NewLiteral("only")},
		// no rdf:rest statement at all: malformed, must still close.
	}, Profile{})

	assert.Contains(t, out, "\"only\"")
	assert.Contains(t, out, ")")
}

func TestTraverseEmptyAnonObject(t *testing.T) {
	b := blank("empty")
	out := renderTraverse(t, []rdf.Statement{
		{S: iri("urn:alice"), P: iri("urn:note"), O: b, Flags: rdf.FlagEmptyO},
	}, Profile{})

	assert.Contains(t, out, "[]")
}
