// Package cmd implements rdfpp's command tree: convert and
// serve-describe, both thin wrappers over the rdf/store/describe
// packages.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "rdfpp",
		Short:        "rdfpp",
		SilenceUsage: true,
		Long:         `Streaming Turtle/TriG/N-Triples/N-Quads reader, writer and in-memory model.`,
	}

	logLevel string
	logger   = logrus.StandardLogger()
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	cobra.OnInitialize(initLogger)
	return rootCmd.Execute()
}

func initLogger() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}
