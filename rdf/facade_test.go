package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormatByExtension(t *testing.T) {
	f, err := DetectFormat("doc.ttl", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatTurtle, f)
}

func TestDetectFormatSniffsTurtleDirective(t *testing.T) {
	f, err := DetectFormat("-", []byte("@prefix ex: <http://example.org/> .\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatTurtle, f)
}

func TestDetectFormatSniffsNQuadsByFourthField(t *testing.T) {
	f, err := DetectFormat("-", []byte("<urn:s> <urn:p> <urn:o> <urn:g> .\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatNQuads, f)
}

func TestReadAllCollectsStatementsAndPrefixes(t *testing.T) {
	src := "@prefix ex: <http://example.org/> .\nex:s ex:p ex:o .\n"
	stmts, env, err := ReadAll(FormatTurtle, strings.NewReader(src), "<input>", Options{})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "http://example.org/s", stmts[0].S.Lexical())

	expanded, ok := env.Expand(CURIE{Prefix: "ex", Local: "p"})
	require.True(t, ok)
	assert.Equal(t, "http://example.org/p", expanded)
}

func TestConvertDocumentRoundTripsNestedAnon(t *testing.T) {
	src := "@prefix ex: <http://example.org/> .\nex:s ex:p [ ex:q ex:o ] .\n"
	var out strings.Builder
	err := ConvertDocument(FormatTurtle, strings.NewReader(src), "<input>", Options{}, FormatTurtle, &out, WriterStyle{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[")
	assert.Contains(t, out.String(), "ex:q")
}

func TestWriteAllEmitsSortedPrefixes(t *testing.T) {
	env := NewPrefixEnv()
	env.SetPrefix("zeta", "http://zeta.example/")
	env.SetPrefix("alpha", "http://alpha.example/")

	var out strings.Builder
	err := WriteAll(&out, FormatTurtle, nil, env, WriterStyle{})
	require.NoError(t, err)
	text := out.String()
	assert.Less(t, strings.Index(text, "alpha"), strings.Index(text, "zeta"))
}
