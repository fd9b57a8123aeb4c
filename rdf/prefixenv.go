package rdf

// PrefixEnv maps prefix names (possibly the empty string, for the
// default ":" prefix) to absolute IRIs, plus an optional base IRI. Both
// the parser (resolving CURIEs and "a") and the writer (qualifying IRIs)
// carry one of these.
type PrefixEnv struct {
	prefixes map[string]string
	base     string
	hasBase  bool
}

// NewPrefixEnv returns an empty environment.
func NewPrefixEnv() *PrefixEnv {
	return &PrefixEnv{prefixes: map[string]string{}}
}

// SetPrefix binds prefix to ns.
func (e *PrefixEnv) SetPrefix(prefix, ns string) {
	e.prefixes[prefix] = ns
}

// Prefix returns the IRI bound to prefix, if any.
func (e *PrefixEnv) Prefix(prefix string) (string, bool) {
	ns, ok := e.prefixes[prefix]
	return ns, ok
}

// Prefixes returns a copy of the prefix table.
func (e *PrefixEnv) Prefixes() map[string]string {
	out := make(map[string]string, len(e.prefixes))
	for k, v := range e.prefixes {
		out[k] = v
	}
	return out
}

// SetBase sets the base IRI.
func (e *PrefixEnv) SetBase(base string) {
	e.base = base
	e.hasBase = true
}

// Base returns the base IRI, if set.
func (e *PrefixEnv) Base() (string, bool) {
	return e.base, e.hasBase
}

// Expand resolves a CURIE against the environment, returning the
// absolute IRI string.
func (e *PrefixEnv) Expand(c CURIE) (string, bool) {
	ns, ok := e.prefixes[c.Prefix]
	if !ok {
		return "", false
	}
	return ns + c.Local, true
}

// LookupPrefixFor returns the longest-matching prefix name bound to an
// IRI namespace that iri starts with, for the writer's CURIE abbreviation
// (prefix:local emission).
func (e *PrefixEnv) LookupPrefixFor(iri string) (prefix, local string, ok bool) {
	bestLen := -1
	for p, ns := range e.prefixes {
		if len(ns) == 0 || len(ns) > len(iri) {
			continue
		}
		if iri[:len(ns)] == ns && len(ns) > bestLen {
			bestLen = len(ns)
			prefix = p
			local = iri[len(ns):]
			ok = true
		}
	}
	return
}
