package handlers

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// newLogger builds the diagnostic logger. Feed and catalog internals
// log at V(1), which only --verbose surfaces; status output itself
// goes to stdout via the renderers, not through the logger.
func newLogger(verbose bool) logr.Logger {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
