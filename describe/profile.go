// Package describe implements the model-to-writer pretty-print
// traversal of spec §4.J: given a range of statements pulled from a
// store.Model, it classifies each subject's role (named, inlined
// anonymous object, inlined list object) and drives an rdf.Writer
// through exactly the nested WriteStatement/EndAnon call sequence the
// Writer already expects from a live parser.
package describe

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/turtlestream/rdf"
)

// Profile bundles the small set of formatter-taste and I/O knobs the
// CLI and tests load from a YAML file, mirroring the pattern of small
// config structs used by the pack's other CLIs.
type Profile struct {
	Syntax          string `yaml:"syntax"`
	BaseURI         string `yaml:"baseURI"`
	RootURI         string `yaml:"rootURI"`
	ASCII           bool   `yaml:"ascii"`
	BlankPrefix     string `yaml:"blankPrefix"`
	Lax             bool   `yaml:"lax"`
	BulkBufferBytes int    `yaml:"bulkBufferBytes"`
	Indent          string `yaml:"indent"`
	// TypeFirst writes a subject's rdf:type statements before its other
	// predicates when opening a new subject, so the "a" abbreviation
	// reads first — spec §4.J's "when opening a new subject and policy
	// allows, writes its rdf:type statements first".
	TypeFirst bool `yaml:"typeFirst"`
	// BlankLines inserts a blank line between unrelated top-level
	// subjects.
	BlankLines bool `yaml:"blankLines"`
}

// LoadProfile reads a Profile from a YAML file.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// WriterStyle builds the rdf.WriterStyle this profile implies.
func (p Profile) WriterStyle() rdf.WriterStyle {
	return rdf.WriterStyle{
		ASCII:                    p.ASCII,
		Indent:                   p.Indent,
		BlankLineBetweenSubjects: p.BlankLines,
		Resolved:                 p.RootURI != "",
		RootURI:                  p.RootURI,
	}
}

// ReaderOptions builds the rdf.Options this profile implies for
// loading documents destined for a store.Model.
func (p Profile) ReaderOptions(logger logrus.FieldLogger) rdf.Options {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return rdf.Options{
		Lax:              p.Lax,
		ReaderStackBytes: p.BulkBufferBytes,
		Logger:           logger,
	}
}

// Format resolves the profile's configured syntax name, defaulting to
// Turtle when unset.
func (p Profile) Format() (rdf.Format, bool) {
	if p.Syntax == "" {
		return rdf.FormatTurtle, true
	}
	return rdf.ParseFormat(p.Syntax)
}
