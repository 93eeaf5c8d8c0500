// Command omap-lint checks a mapping rule file against the Go packages it
// names: the types must exist, field paths must resolve and the types on both
// sides of each rule must fit. Near misses come with suggestions.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errLintFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		os.Exit(1)
	}
}
