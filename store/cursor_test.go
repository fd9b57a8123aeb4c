package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtlestream/rdf"
)

func TestCursorNextPrev(t *testing.T) {
	m := New()
	p := rdf.IRI{Value: "urn:p"}
	for i := 0; i < 3; i++ {
		s := rdf.IRI{Value: "urn:s" + string(rune('0'+i))}
		require.NoError(t, m.Insert(stmt(s, p, rdf.IRI{Value: "urn:o"})))
	}

	c := m.Find(rdf.Pattern{})
	require.Equal(t, 3, c.Len())

	first, err := c.Statement()
	require.NoError(t, err)

	assert.True(t, c.Next())
	second, err := c.Statement()
	require.NoError(t, err)
	assert.NotEqual(t, first.S, second.S)

	assert.True(t, c.Next())
	assert.False(t, c.Next(), "Next past the end must report false")

	assert.True(t, c.Prev())
	assert.True(t, c.Prev())
	assert.True(t, c.Prev())
	back, err := c.Statement()
	require.NoError(t, err)
	assert.Equal(t, first.S, back.S)

	assert.False(t, c.Prev(), "Prev before the start must report false")
}

func TestCursorAllIsIndependentCopy(t *testing.T) {
	m := New()
	require.NoError(t, m.Insert(stmt(rdf.IRI{Value: "urn:s"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})))

	c := m.Find(rdf.Pattern{})
	items := c.All()
	require.Len(t, items, 1)
	items[0].S = rdf.IRI{Value: "urn:mutated"}

	fresh, err := c.Statement()
	require.NoError(t, err)
	assert.Equal(t, "urn:s", fresh.S.Lexical())
}
