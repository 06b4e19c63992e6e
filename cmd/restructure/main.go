// Command restructure is the CLI entry point: "restructure run <region-file>"
// restructures one or more CFG regions and prints their status; "restructure
// serve" launches the read-only diagnostics dashboard over a prior run.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
