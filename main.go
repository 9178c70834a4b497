// Package main is the entrypoint of the bundlesize CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/bundlesize/cmd"
	"github.com/huangsam/bundlesize/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and closes the snapshot store before the process exits.
func run() int {
	cmd.SetStoreManager(iocache.Manager)
	defer iocache.CloseStore()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
