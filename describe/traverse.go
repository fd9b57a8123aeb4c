package describe

import (
	"github.com/turtlestream/rdf"
	"github.com/turtlestream/rdf/store"
)

// graph indexes a fixed set of statements by subject and counts each
// blank node's in-degree (how many times it appears as an object),
// which is exactly what subject-role classification needs: a blank
// referenced as an object exactly once is a candidate for inlining at
// that one reference point instead of being printed as its own
// top-level subject (spec §4.J's ANON_O/LIST_O roles). A blank
// referenced zero or 2+ times can't soundly be inlined — zero means
// nothing points at it, 2+ would duplicate its body — so it prints
// plainly under its "_:id" label like any NAMED subject. This mirrors
// the Writer's own object-position-only abbreviation scope: Traverse
// never tries to re-open brackets for a subject-position anonymous
// node or list, since by the time a subject is known the statements
// describing it have already been emitted.
type graph struct {
	order     []string
	bySubject map[string][]rdf.Statement
	inDegree  map[string]int
}

func subjectKey(t rdf.Term) string {
	return t.Kind().String() + "\x00" + t.Lexical()
}

func buildGraph(stmts []rdf.Statement) *graph {
	g := &graph{
		bySubject: map[string][]rdf.Statement{},
		inDegree:  map[string]int{},
	}
	for _, s := range stmts {
		key := subjectKey(s.S)
		if _, ok := g.bySubject[key]; !ok {
			g.order = append(g.order, key)
		}
		g.bySubject[key] = append(g.bySubject[key], s)
		if s.O.Kind() == rdf.KindBlank {
			g.inDegree[subjectKey(s.O)]++
		}
	}
	return g
}

func (g *graph) isListHead(key string) bool {
	for _, s := range g.bySubject[key] {
		if s.P.Kind() == rdf.KindIRI && s.P.Lexical() == rdf.RDFFirst {
			return true
		}
	}
	return false
}

// inlineEligible reports whether t is a blank node that should be
// inlined at its single reference point rather than printed at the
// top level.
func (g *graph) inlineEligible(t rdf.Term) bool {
	return t.Kind() == rdf.KindBlank && g.inDegree[subjectKey(t)] == 1
}

// Traverse pretty-prints the statements in root's range through w,
// classifying each subject as a plain top-level subject or as an
// inlined anonymous/list object per spec §4.J, repairing
// mis-terminated rdf:first/rdf:rest chains by emitting an explicit
// rdf:rest rdf:nil as it goes.
func Traverse(m *store.Model, root store.Cursor, w *rdf.Writer, p Profile) error {
	g := buildGraph(root.All())
	visited := map[string]bool{}
	for _, key := range g.order {
		if g.inDegree[key] == 1 {
			continue // printed inline at its one reference point
		}
		if err := writeSubjectBody(w, g, key, p, visited); err != nil {
			return err
		}
	}
	return w.End()
}

// orderedStatements groups stmts by predicate (preserving first-seen
// predicate order so repeated predicates stay adjacent for the
// Writer's ','/';' continuation logic), optionally moving an rdf:type
// group to the front.
func orderedStatements(stmts []rdf.Statement, typeFirst bool) []rdf.Statement {
	var predOrder []string
	groups := map[string][]rdf.Statement{}
	for _, s := range stmts {
		pk := s.P.String()
		if _, ok := groups[pk]; !ok {
			predOrder = append(predOrder, pk)
		}
		groups[pk] = append(groups[pk], s)
	}
	if typeFirst {
		reordered := make([]string, 0, len(predOrder))
		rest := make([]string, 0, len(predOrder))
		for _, pk := range predOrder {
			if groups[pk][0].P.Kind() == rdf.KindIRI && groups[pk][0].P.Lexical() == rdf.RDFType {
				reordered = append(reordered, pk)
			} else {
				rest = append(rest, pk)
			}
		}
		predOrder = append(reordered, rest...)
	}
	out := make([]rdf.Statement, 0, len(stmts))
	for _, pk := range predOrder {
		out = append(out, groups[pk]...)
	}
	return out
}

func writeSubjectBody(w *rdf.Writer, g *graph, key string, p Profile, visited map[string]bool) error {
	if visited[key] {
		return nil
	}
	visited[key] = true
	stmts := g.bySubject[key]
	for _, s := range orderedStatements(stmts, p.TypeFirst) {
		s.Flags = objectFlags(g, s.O)
		if err := w.WriteStatement(s); err != nil {
			return err
		}
		if err := writeInlineIfNeeded(w, g, s, p, visited); err != nil {
			return err
		}
	}
	return nil
}

// objectFlags decides the bracket the Writer should open for a
// statement's object, without yet writing anything itself.
func objectFlags(g *graph, object rdf.Term) rdf.StatementFlags {
	if object.Kind() == rdf.KindIRI && object.Lexical() == rdf.RDFNil {
		return rdf.FlagListO
	}
	if !g.inlineEligible(object) {
		return 0
	}
	okey := subjectKey(object)
	if g.isListHead(okey) {
		return rdf.FlagListO
	}
	if len(g.bySubject[okey]) == 0 {
		return rdf.FlagEmptyO
	}
	return rdf.FlagAnonO
}

func writeInlineIfNeeded(w *rdf.Writer, g *graph, s rdf.Statement, p Profile, visited map[string]bool) error {
	switch {
	case s.Flags&rdf.FlagAnonO != 0:
		return writeInlineAnon(w, g, s.O, p, visited)
	case s.Flags&rdf.FlagListO != 0 && s.O.Kind() == rdf.KindBlank:
		return writeInlineList(w, g, s.O, p, visited)
	default:
		return nil
	}
}

// writeInlineAnon writes the full predicateObjectList of an anonymous
// object inline, then closes its brackets via EndAnon.
func writeInlineAnon(w *rdf.Writer, g *graph, node rdf.Term, p Profile, visited map[string]bool) error {
	key := subjectKey(node)
	visited[key] = true
	for _, s := range orderedStatements(g.bySubject[key], p.TypeFirst) {
		s.Flags = objectFlags(g, s.O)
		if err := w.WriteStatement(s); err != nil {
			return err
		}
		if err := writeInlineIfNeeded(w, g, s, p, visited); err != nil {
			return err
		}
	}
	return w.EndAnon(node)
}

// writeInlineList walks an rdf:first/rdf:rest chain link by link,
// repairing a mis-terminated list (a link missing rdf:first, or
// missing/non-nil rdf:rest with no continuation) by emitting an
// explicit "rdf:rest rdf:nil" to force the Writer to close the
// bracket it already opened.
func writeInlineList(w *rdf.Writer, g *graph, head rdf.Term, p Profile, visited map[string]bool) error {
	cur := head
	for {
		key := subjectKey(cur)
		visited[key] = true
		firstStmt, haveFirst := findByPredicate(g.bySubject[key], rdf.RDFFirst)
		if !haveFirst {
			return w.WriteStatement(rdf.Statement{S: cur, P: rdf.IRI{Value: rdf.RDFRest}, O: rdf.IRI{Value: rdf.RDFNil}})
		}
		firstStmt.Flags = objectFlags(g, firstStmt.O)
		if err := w.WriteStatement(firstStmt); err != nil {
			return err
		}
		if err := writeInlineIfNeeded(w, g, firstStmt, p, visited); err != nil {
			return err
		}

		restStmt, haveRest := findByPredicate(g.bySubject[key], rdf.RDFRest)
		if !haveRest || (restStmt.O.Kind() != rdf.KindBlank && !(restStmt.O.Kind() == rdf.KindIRI && restStmt.O.Lexical() == rdf.RDFNil)) {
			// Missing rdf:rest, or a non-nil/non-blank terminator: the
			// chain is malformed. Close the bracket explicitly rather
			// than emit or continue from the bad link.
			return w.WriteStatement(rdf.Statement{S: cur, P: rdf.IRI{Value: rdf.RDFRest}, O: rdf.IRI{Value: rdf.RDFNil}})
		}
		if err := w.WriteStatement(restStmt); err != nil {
			return err
		}
		if restStmt.O.Kind() == rdf.KindIRI && restStmt.O.Lexical() == rdf.RDFNil {
			return nil
		}
		cur = restStmt.O
	}
}

func findByPredicate(stmts []rdf.Statement, predIRI string) (rdf.Statement, bool) {
	for _, s := range stmts {
		if s.P.Kind() == rdf.KindIRI && s.P.Lexical() == predIRI {
			return s, true
		}
	}
	return rdf.Statement{}, false
}
