package cmd

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtlestream/rdf"
	"github.com/turtlestream/rdf/describe"
	"github.com/turtlestream/rdf/store"
)

var (
	describeConfigPath string
	describeTo         string
)

var serveDescribeCmd = &cobra.Command{
	Use:   "serve-describe MODEL_DIR",
	Short: "Load every document under MODEL_DIR into a model and pretty-print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runServeDescribe,
}

func init() {
	serveDescribeCmd.Flags().StringVar(&describeConfigPath, "config", "", "YAML profile controlling writer style and traversal policy")
	serveDescribeCmd.Flags().StringVar(&describeTo, "to", "turtle", "output syntax: turtle, trig, ntriples, nquads")
	rootCmd.AddCommand(serveDescribeCmd)
}

func runServeDescribe(cmd *cobra.Command, args []string) error {
	dir := args[0]

	p := describe.Profile{}
	if describeConfigPath != "" {
		loaded, err := describe.LoadProfile(describeConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		p = loaded
	}

	to, ok := rdf.ParseFormat(describeTo)
	if !ok {
		return fmt.Errorf("unrecognized --to syntax %q", describeTo)
	}

	model := store.New()
	opts := p.ReaderOptions(logger)
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, ok := rdf.FormatFromExtension(path)
		if !ok {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := loadInto(model, format, f, path, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		count += n
		return nil
	})
	if err != nil {
		return err
	}
	logger.WithField("statements", count).Info("loaded model")

	out := bufio.NewWriter(os.Stdout)
	w := rdf.NewWriter(out, to, p.WriterStyle())
	root := model.Find(rdf.Pattern{})
	if err := describe.Traverse(model, root, w, p); err != nil {
		return err
	}
	return out.Flush()
}

func loadInto(model *store.Model, format rdf.Format, f *os.File, path string, opts rdf.Options) (int, error) {
	reader, err := rdf.NewReader(format, f, path, opts)
	if err != nil {
		return 0, err
	}
	n := 0
	err = reader.ReadDocument(rdf.SinkFunc(func(ev rdf.Event) error {
		if ev.Kind != rdf.EventStatement {
			return nil
		}
		n++
		return model.Insert(rdf.Statement{S: ev.S, P: ev.P, O: ev.O, G: ev.G})
	}))
	return n, err
}
