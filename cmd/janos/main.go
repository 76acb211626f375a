package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aellingwood/janos/internal/pipeline"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		var perr *pipeline.PluginError
		if errors.As(err, &perr) {
			fmt.Fprintf(os.Stderr, "Error: stage %q failed: %v\n", perr.Stage, perr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
