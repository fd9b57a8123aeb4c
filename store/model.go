// Package store holds an in-memory, multi-indexed RDF statement model,
// per spec §4.I. It is deliberately independent of the rdf package's
// streaming Reader/Writer: a Model is a destination statements are
// loaded into (from a Reader, or built programmatically) and a source
// describe.Traverse walks back out through an rdf.Writer.
package store

import (
	"fmt"

	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/turtlestream/rdf"
)

const btreeDegree = 32

// orderName identifies one of the field permutations a Model
// maintains. Spec §4.I allows up to twelve; this implementation
// maintains the four most broadly useful ones — one leading with each
// of S, P, O and G — which between them give an efficient
// leading-bound-field scan for any pattern shape Find/Count is likely
// to receive, rather than materializing all twelve unconditionally.
type orderName uint8

const (
	orderSPOG orderName = iota
	orderPOSG
	orderOSPG
	orderGSPO
	numOrders
)

func (o orderName) fields() [4]int {
	switch o {
	case orderSPOG:
		return [4]int{0, 1, 2, 3}
	case orderPOSG:
		return [4]int{1, 2, 0, 3}
	case orderOSPG:
		return [4]int{2, 0, 1, 3}
	default:
		return [4]int{3, 0, 1, 2}
	}
}

// Model is an in-memory multi-index store of rdf.Statement values.
// The zero value is not usable; construct with New. A Model is not safe
// for concurrent mutation; concurrent read-only use (Find, Count, Len)
// is safe while no goroutine mutates it.
type Model struct {
	id       uuid.UUID
	version  uint64
	indices  [numOrders]*btree.BTreeG[rdf.Statement]
	interned map[string]rdf.Term
}

// New constructs an empty Model.
func New() *Model {
	m := &Model{id: uuid.New(), interned: map[string]rdf.Term{}}
	for i := orderName(0); i < numOrders; i++ {
		m.indices[i] = btree.NewG(btreeDegree, lessFuncFor(i))
	}
	return m
}

// InstanceID identifies this Model for diagnostics — embedded in
// ErrBadCursor messages so a multi-model deployment can tell which
// model a stale cursor came from.
func (m *Model) InstanceID() string { return m.id.String() }

// Version returns the monotonic counter bumped by every mutation;
// Cursors capture it at creation time and a stale Cursor (one whose
// captured version no longer matches) reports rdf.ErrBadCursor.
func (m *Model) Version() uint64 { return m.version }

// Len reports the number of distinct statements held.
func (m *Model) Len() int { return m.indices[orderSPOG].Len() }

// Insert adds stmt to every maintained index, deduplicating by
// statement equality (spec §4.I: "adds to every chosen index and
// deduplicates by equality"). It interns the statement's nodes against
// the model's node set so repeated IRIs/literals share one Term value,
// the store's stand-in for the spec's generic hash-set collaborator.
func (m *Model) Insert(stmt rdf.Statement) error {
	if err := stmt.Valid(); err != nil {
		return err
	}
	stmt.S = m.intern(stmt.S)
	stmt.P = m.intern(stmt.P)
	stmt.O = m.intern(stmt.O)
	if stmt.G != nil {
		stmt.G = m.intern(stmt.G)
	}
	for i := range m.indices {
		m.indices[i].ReplaceOrInsert(stmt)
	}
	m.version++
	return nil
}

func (m *Model) intern(t rdf.Term) rdf.Term {
	key := t.Kind().String() + "\x00" + t.String()
	if existing, ok := m.interned[key]; ok {
		return existing
	}
	m.interned[key] = t
	return t
}

// Erase removes the statement c points at from every index. c must
// have been produced by this Model and must not have been invalidated
// by an intervening mutation.
func (m *Model) Erase(c Cursor) error {
	if err := m.checkCursor(c); err != nil {
		return err
	}
	stmt, ok := c.current()
	if !ok {
		return fmt.Errorf("%w: cursor not positioned on a statement", rdf.ErrBadCursor)
	}
	for i := range m.indices {
		m.indices[i].Delete(stmt)
	}
	m.version++
	return nil
}

func (m *Model) checkCursor(c Cursor) error {
	if c.model != m {
		return fmt.Errorf("%w: cursor belongs to a different model (want instance %s)", rdf.ErrBadCursor, m.id)
	}
	if c.version != m.version {
		return fmt.Errorf("%w: model instance %s mutated since cursor was taken", rdf.ErrBadCursor, m.id)
	}
	return nil
}

// Find picks the index whose leading field order matches the most
// bound (non-nil) fields of pattern, collects every match by walking
// that whole index (see scan), and returns a Cursor positioned at the
// first match.
func (m *Model) Find(pattern rdf.Pattern) Cursor {
	order := m.bestOrder(pattern)
	items := m.scan(order, pattern)
	return Cursor{model: m, version: m.version, items: items, pos: 0}
}

// Count returns the number of statements matching pattern, counted by
// the same full-index scan Find uses.
func (m *Model) Count(pattern rdf.Pattern) int {
	return len(m.scan(m.bestOrder(pattern), pattern))
}

func (m *Model) bestOrder(pattern rdf.Pattern) orderName {
	bound := [4]bool{pattern.S != nil, pattern.P != nil, pattern.O != nil, pattern.G != nil}
	best := orderSPOG
	bestLen := -1
	for o := orderName(0); o < numOrders; o++ {
		n := 0
		for _, f := range o.fields() {
			if !bound[f] {
				break
			}
			n++
		}
		if n > bestLen {
			bestLen = n
			best = o
		}
	}
	return best
}

// scan walks the chosen index in its natural order, collecting every
// statement matching pattern. The index choice in bestOrder gives
// iteration locality for the common "several leading fields bound"
// case (matching statements cluster together under that ordering) even
// though this walks the full index rather than a bounded sub-range —
// a correctly-bounded AscendRange needs a real sentinel pivot value
// per Term kind, which the model's plain-Go Term values don't define;
// see DESIGN.md.
func (m *Model) scan(order orderName, pattern rdf.Pattern) []rdf.Statement {
	var matches []rdf.Statement
	m.indices[order].Ascend(func(stmt rdf.Statement) bool {
		if stmt.Match(pattern) {
			matches = append(matches, stmt)
		}
		return true
	})
	return matches
}

func lessFuncFor(o orderName) func(a, b rdf.Statement) bool {
	fields := o.fields()
	return func(a, b rdf.Statement) bool {
		av := [4]rdf.Term{a.S, a.P, a.O, a.G}
		bv := [4]rdf.Term{b.S, b.P, b.O, b.G}
		for _, f := range fields {
			c := compareTermOrNil(av[f], bv[f])
			if c != 0 {
				return c < 0
			}
		}
		return false
	}
}

// compareTermOrNil treats nil as sorting before any concrete term,
// so a Pattern's wildcard fields (nil) never panic Compare, which
// assumes non-nil Terms.
func compareTermOrNil(a, b rdf.Term) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return rdf.Compare(a, b)
	}
}
