package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtlestream/rdf"
)

func stmt(s, p, o rdf.Term) rdf.Statement {
	return rdf.Statement{S: s, P: p, O: o}
}

func TestInsertDedupesAndBumpsVersion(t *testing.T) {
	m := New()
	a := stmt(rdf.IRI{Value: "urn:s"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})

	require.NoError(t, m.Insert(a))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, uint64(1), m.Version())

	require.NoError(t, m.Insert(a))
	assert.Equal(t, 1, m.Len(), "re-inserting an identical statement must not grow the model")
}

func TestFindByLeadingField(t *testing.T) {
	m := New()
	alice := rdf.IRI{Value: "urn:alice"}
	bob := rdf.IRI{Value: "urn:bob"}
	knows := rdf.IRI{Value: "urn:knows"}
	likes := rdf.IRI{Value: "urn:likes"}

	require.NoError(t, m.Insert(stmt(alice, knows, bob)))
	require.NoError(t, m.Insert(stmt(alice, likes, bob)))
	require.NoError(t, m.Insert(stmt(bob, knows, alice)))

	c := m.Find(rdf.Pattern{S: alice})
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 1, m.Count(rdf.Pattern{S: bob, P: knows}))
	assert.Equal(t, 0, m.Count(rdf.Pattern{S: bob, P: likes}))
}

func TestCursorInvalidatedByMutation(t *testing.T) {
	m := New()
	a := stmt(rdf.IRI{Value: "urn:s"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})
	require.NoError(t, m.Insert(a))

	c := m.Find(rdf.Pattern{})
	require.True(t, c.Valid())

	require.NoError(t, m.Insert(stmt(rdf.IRI{Value: "urn:s2"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})))

	_, err := c.Statement()
	assert.ErrorIs(t, err, rdf.ErrBadCursor)
}

func TestEraseRemovesFromEveryIndex(t *testing.T) {
	m := New()
	a := stmt(rdf.IRI{Value: "urn:s"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})
	require.NoError(t, m.Insert(a))

	c := m.Find(rdf.Pattern{S: rdf.IRI{Value: "urn:s"}})
	require.Equal(t, 1, c.Len())

	require.NoError(t, m.Erase(c))
	assert.Equal(t, 0, m.Len())

	c2 := m.Find(rdf.Pattern{})
	assert.Equal(t, 0, c2.Len())
}

func TestEraseRejectsStaleCursor(t *testing.T) {
	m := New()
	a := stmt(rdf.IRI{Value: "urn:s"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})
	require.NoError(t, m.Insert(a))

	c := m.Find(rdf.Pattern{})
	require.NoError(t, m.Insert(stmt(rdf.IRI{Value: "urn:s2"}, rdf.IRI{Value: "urn:p"}, rdf.IRI{Value: "urn:o"})))

	err := m.Erase(c)
	assert.ErrorIs(t, err, rdf.ErrBadCursor)
}

func TestBestOrderPrefersMoreBoundLeadingFields(t *testing.T) {
	m := New()
	assert.Equal(t, orderSPOG, m.bestOrder(rdf.Pattern{S: rdf.IRI{Value: "urn:s"}}))
	assert.Equal(t, orderPOSG, m.bestOrder(rdf.Pattern{P: rdf.IRI{Value: "urn:p"}}))
	assert.Equal(t, orderOSPG, m.bestOrder(rdf.Pattern{O: rdf.IRI{Value: "urn:o"}}))
	assert.Equal(t, orderGSPO, m.bestOrder(rdf.Pattern{G: rdf.IRI{Value: "urn:g"}}))
}
