package main

import (
	"os"

	"github.com/turtlestream/rdf/cmd/rdfpp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
