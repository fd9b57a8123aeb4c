package rdf

import (
	"fmt"
	"io"
	"strings"
)

// DetectFormat resolves FormatAuto using the §6 auto-detection rule:
// the file extension first, falling back to sniffing the first
// non-whitespace bytes of content for a syntax fingerprint a file
// extension alone can't give (e.g. piped stdin named "-").
func DetectFormat(path string, content []byte) (Format, error) {
	if f, ok := FormatFromExtension(path); ok {
		return f, nil
	}
	if f, ok := sniffFormat(content); ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: cannot determine syntax for %q", ErrUnsupportedFormat, path)
}

// sniffFormat inspects the leading bytes of a document for syntax
// markers that only ever appear in one of the four formats: an "@"
// directive or "{" graph keyword means Turtle/TriG; the line-oriented
// formats are distinguished by the presence of a 4th whitespace-
// separated term (the graph) before the terminating '.'.
func sniffFormat(content []byte) (Format, bool) {
	trimmed := strings.TrimLeft(string(content), " \t\r\n")
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, "@") || strings.HasPrefix(trimmed, "PREFIX") || strings.HasPrefix(trimmed, "BASE") {
		return FormatTurtle, true
	}
	nl := strings.IndexByte(trimmed, '\n')
	line := trimmed
	if nl >= 0 {
		line = trimmed[:nl]
	}
	if strings.Contains(line, "{") {
		return FormatTriG, true
	}
	fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), "."))
	if len(fields) >= 4 {
		return FormatNQuads, true
	}
	return FormatNTriples, true
}

// ReadAll parses an entire document and returns its statements in
// document order. Directive events (EventBase/EventPrefix) update a
// fresh PrefixEnv returned alongside, so a caller that also wants to
// write the result back out has the namespace bindings it parsed with.
func ReadAll(format Format, r io.Reader, name string, opts Options) ([]Statement, *PrefixEnv, error) {
	reader, err := NewReader(format, r, name, opts)
	if err != nil {
		return nil, nil, err
	}
	env := NewPrefixEnv()
	var stmts []Statement
	err = reader.ReadDocument(SinkFunc(func(ev Event) error {
		switch ev.Kind {
		case EventBase:
			env.SetBase(ev.BaseIRI)
		case EventPrefix:
			env.SetPrefix(ev.PrefixName, ev.PrefixIRI)
		case EventStatement:
			stmts = append(stmts, Statement{S: ev.S, P: ev.P, O: ev.O, G: ev.G, Flags: ev.Flags, Caret: ev.Caret})
		}
		return nil
	}))
	if err != nil {
		return nil, nil, err
	}
	return stmts, env, nil
}

// ConvertDocument streams a document directly from a Reader to a
// Writer without materializing intermediate statements, preserving
// EventEnd markers exactly — the one path that round-trips nested
// anonymous-node abbreviation losslessly. This is what cmd/rdfpp's
// convert subcommand uses.
func ConvertDocument(from Format, r io.Reader, name string, opts Options, to Format, w io.Writer, style WriterStyle) error {
	reader, err := NewReader(from, r, name, opts)
	if err != nil {
		return err
	}
	wr := NewWriter(w, to, style)
	err = reader.ReadDocument(SinkFunc(func(ev Event) error {
		switch ev.Kind {
		case EventBase:
			return wr.SetBase(ev.BaseIRI)
		case EventPrefix:
			return wr.Prefix(ev.PrefixName, ev.PrefixIRI)
		case EventStatement:
			return wr.WriteStatement(Statement{S: ev.S, P: ev.P, O: ev.O, G: ev.G, Flags: ev.Flags, Caret: ev.Caret})
		case EventEnd:
			return wr.EndAnon(ev.EndNode)
		default:
			return nil
		}
	}))
	if err != nil {
		return err
	}
	if err := wr.End(); err != nil {
		return err
	}
	return wr.Flush()
}

// WriteAll writes stmts — a flat, unnested statement set such as a
// store.Model dump or describe.Traverse's output glue, never one
// carrying AnonCont/ListCont continuations — to w using syntax and
// style. It binds env's prefixes and base first when env is non-nil.
// For a direct parser-to-writer pipe that must preserve nested
// anonymous-node abbreviation, use ConvertDocument instead.
func WriteAll(w io.Writer, syntax Format, stmts []Statement, env *PrefixEnv, style WriterStyle) error {
	wr := NewWriter(w, syntax, style)
	if env != nil {
		if base, ok := env.Base(); ok {
			if err := wr.SetBase(base); err != nil {
				return err
			}
		}
		prefixes := env.Prefixes()
		for _, name := range sortedKeys(prefixes) {
			if err := wr.Prefix(name, prefixes[name]); err != nil {
				return err
			}
		}
	}
	for _, s := range stmts {
		if err := wr.WriteStatement(s); err != nil {
			return err
		}
	}
	if err := wr.End(); err != nil {
		return err
	}
	return wr.Flush()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// ExtensionFor returns the conventional file extension for format,
// the inverse of FormatFromExtension.
func ExtensionFor(format Format) string {
	switch format {
	case FormatTurtle:
		return ".ttl"
	case FormatTriG:
		return ".trig"
	case FormatNTriples:
		return ".nt"
	case FormatNQuads:
		return ".nq"
	default:
		return ""
	}
}
