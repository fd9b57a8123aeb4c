package rdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllTurtleCollection(t *testing.T) {
	src := "@prefix ex: <http://example.org/> .\nex:s ex:list ( 1 2 3 ) .\n"
	stmts, _, err := ReadAll(FormatTurtle, strings.NewReader(src), "<input>", Options{})
	require.NoError(t, err)

	var firsts, rests int
	for _, s := range stmts {
		if s.P.Kind() == KindIRI && s.P.Lexical() == RDFFirst {
			firsts++
		}
		if s.P.Kind() == KindIRI && s.P.Lexical() == RDFRest {
			rests++
		}
	}
	assert.Equal(t, 3, firsts)
	assert.Equal(t, 3, rests)
}

func TestReadAllTurtleAnonNode(t *testing.T) {
	src := "@prefix ex: <http://example.org/> .\nex:s ex:p [ ex:q ex:o ] .\n"
	stmts, _, err := ReadAll(FormatTurtle, strings.NewReader(src), "<input>", Options{})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, KindBlank, stmts[0].O.Kind())
	assert.True(t, Equal(stmts[0].O, stmts[1].S))
}

func TestReadAllNTriples(t *testing.T) {
	src := "<urn:s> <urn:p> \"hello\" .\n<urn:s> <urn:p> _:b1 .\n"
	stmts, _, err := ReadAll(FormatNTriples, strings.NewReader(src), "<input>", Options{})
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "hello", stmts[0].O.Lexical())
	assert.Equal(t, KindBlank, stmts[1].O.Kind())
}

func TestReadAllNQuadsCarriesGraph(t *testing.T) {
	src := "<urn:s> <urn:p> <urn:o> <urn:g> .\n"
	stmts, _, err := ReadAll(FormatNQuads, strings.NewReader(src), "<input>", Options{})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.NotNil(t, stmts[0].G)
	assert.Equal(t, "urn:g", stmts[0].G.Lexical())
}

func TestReadAllLaxModeRecoversFromBadLine(t *testing.T) {
	src := "<urn:s> <urn:p> <urn:o> .\nthis is not valid\n<urn:s2> <urn:p> <urn:o> .\n"
	stmts, _, err := ReadAll(FormatNTriples, strings.NewReader(src), "<input>", Options{Lax: true})
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}
