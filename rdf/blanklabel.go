package rdf

import (
	"fmt"
	"strconv"
)

// blankLabeler generates fresh blank-node IDs and rewrites user-visible
// labels that would collide with them, per spec §4.G's blank-ID clash
// detection: in fancy syntaxes without ExactBlanks, a user label
// "b<digit>..." is rewritten to "B<digit>..."; if both forms occur in
// the same document, ID_CLASH is raised.
type blankLabeler struct {
	prefix      string
	counter     int
	exactBlanks bool

	sawLowerB bool
	sawUpperB bool
}

func newBlankLabeler(prefix string, exactBlanks bool) *blankLabeler {
	return &blankLabeler{prefix: prefix, exactBlanks: exactBlanks}
}

// Fresh mints a new generator-owned blank label "b<n>" (with the
// configured document prefix).
func (g *blankLabeler) Fresh() Blank {
	g.counter++
	return Blank{ID: g.prefix + "b" + strconv.Itoa(g.counter)}
}

// User processes a label the document spelled out explicitly
// ("_:label"), applying the clash-avoidance rewrite unless ExactBlanks is
// set.
func (g *blankLabeler) User(label string) (Blank, error) {
	if !g.exactBlanks && len(label) >= 2 && label[0] == 'B' && label[1] >= '0' && label[1] <= '9' {
		g.sawUpperB = true
		if g.sawLowerB {
			return Blank{}, fmt.Errorf("%w: %q collides with a rewritten label", ErrIDClash, label)
		}
	}
	if g.exactBlanks || !looksGenerated(label) {
		return Blank{ID: g.prefix + label}, nil
	}
	rewritten := "B" + label[1:]
	g.sawLowerB = true
	if g.sawUpperB {
		return Blank{}, fmt.Errorf("%w: %q collides with a generated label", ErrIDClash, label)
	}
	return Blank{ID: g.prefix + rewritten}, nil
}

func looksGenerated(label string) bool {
	if len(label) < 2 || label[0] != 'b' {
		return false
	}
	return label[1] >= '0' && label[1] <= '9'
}
