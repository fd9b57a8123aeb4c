package store

import "github.com/turtlestream/rdf"

// Cursor is a position within a Find result set, valid only as long as
// the owning Model's version hasn't changed since it was taken (spec
// §4.I: "a monotonically increasing version counter invalidates
// outstanding cursors on any mutation"). The matched range is
// materialized at Find time rather than walked lazily from the
// underlying B-tree, since btree.BTreeG's Ascend/Descend are callback-
// driven and don't expose a resumable, suspendable iterator; this still
// gives exactly the "ordered iterator with insert, delete, find, and
// bidirectional advance" surface spec §1 asks of the collaborator, just
// built on a snapshot slice instead of a live tree walk.
type Cursor struct {
	model   *Model
	version uint64
	items   []rdf.Statement
	pos     int
}

// Valid reports whether the cursor is positioned on a statement and
// hasn't been invalidated by a mutation since it was taken.
func (c Cursor) Valid() bool {
	return c.model != nil && c.version == c.model.version && c.pos >= 0 && c.pos < len(c.items)
}

func (c Cursor) current() (rdf.Statement, bool) {
	if c.pos < 0 || c.pos >= len(c.items) {
		return rdf.Statement{}, false
	}
	return c.items[c.pos], true
}

// Statement returns the statement the cursor currently points at, or
// rdf.ErrBadCursor if the cursor has been invalidated or exhausted.
func (c Cursor) Statement() (rdf.Statement, error) {
	if err := c.model.checkCursor(c); err != nil {
		return rdf.Statement{}, err
	}
	stmt, ok := c.current()
	if !ok {
		return rdf.Statement{}, rdf.ErrBadCursor
	}
	return stmt, nil
}

// Next advances the cursor forward one position, reporting whether it
// now points at a valid statement.
func (c *Cursor) Next() bool {
	if c.model == nil || c.version != c.model.version {
		return false
	}
	c.pos++
	return c.pos < len(c.items)
}

// Prev moves the cursor back one position, reporting whether it now
// points at a valid statement.
func (c *Cursor) Prev() bool {
	if c.model == nil || c.version != c.model.version {
		return false
	}
	c.pos--
	return c.pos >= 0
}

// Len reports the total number of statements in the cursor's result
// set (its position within this count does not change).
func (c Cursor) Len() int { return len(c.items) }

// All returns a copy of the cursor's entire matched range, independent
// of its current position — the scope describe.Traverse classifies
// and walks.
func (c Cursor) All() []rdf.Statement {
	out := make([]rdf.Statement, len(c.items))
	copy(out, c.items)
	return out
}
