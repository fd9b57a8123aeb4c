package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtlestream/rdf"
	"github.com/turtlestream/rdf/describe"
)

var (
	convertLax        bool
	convertASCII      bool
	convertBulk       bool
	convertRoot       string
	convertConfigPath string
	convertTo         string
)

var convertCmd = &cobra.Command{
	Use:   "convert INPUT",
	Short: "Reformat a Turtle/TriG/N-Triples/N-Quads document",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertLax, "lax", false, "recover from syntax errors instead of aborting")
	convertCmd.Flags().BoolVar(&convertASCII, "ascii", false, "escape non-ASCII code points on output")
	convertCmd.Flags().BoolVar(&convertBulk, "bulk", false, "size the reader's node arena for a large document")
	convertCmd.Flags().StringVar(&convertRoot, "root", "", "bound root URI for output relativization")
	convertCmd.Flags().StringVar(&convertConfigPath, "config", "", "YAML profile; --lax and --ascii still switch on, --root overrides, --bulk is ignored")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "output syntax: turtle, trig, ntriples, nquads (default: same as input)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]

	p := describe.Profile{ASCII: convertASCII, Lax: convertLax, RootURI: convertRoot}
	if convertBulk {
		p.BulkBufferBytes = 64 << 20
	}
	if convertConfigPath != "" {
		loaded, err := describe.LoadProfile(convertConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		loaded.ASCII = loaded.ASCII || convertASCII
		loaded.Lax = loaded.Lax || convertLax
		if convertRoot != "" {
			loaded.RootURI = convertRoot
		}
		p = loaded
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 4096)
	n, _ := f.Read(head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	from, err := rdf.DetectFormat(path, head[:n])
	if err != nil {
		return err
	}
	to := from
	if convertTo != "" {
		parsed, ok := rdf.ParseFormat(convertTo)
		if !ok {
			return fmt.Errorf("unrecognized --to syntax %q", convertTo)
		}
		to = parsed
	}

	opts := p.ReaderOptions(logger)
	style := p.WriterStyle()

	out := bufio.NewWriter(os.Stdout)
	if err := rdf.ConvertDocument(from, f, path, opts, to, out, style); err != nil {
		return err
	}
	return out.Flush()
}
