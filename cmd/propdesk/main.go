// Command propdesk serves the proposal workspace over HTTP and offers
// maintenance commands for dashboards, archives and text suggestions.
package main

import (
	"fmt"
	"os"

	"propdesk/internal/config"
)

var (
	version  = "dev"
	exitFunc = os.Exit
)

func main() {
	if err := newRootCmd(config.Load, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}
