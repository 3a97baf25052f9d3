// Command ptrscan builds and searches pointer chains in a live process's
// address space: "build" snapshots a process into a pair file and module
// list, "scan" searches that snapshot for chains reaching a target
// address, "diff" intersects two result files, and "repl" re-scans an
// already-loaded snapshot interactively.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "ptrscan",
		Short:         "pointer-chain scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ptrscan: %v\n", err)
		os.Exit(1)
	}
}
