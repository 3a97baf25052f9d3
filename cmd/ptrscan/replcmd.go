package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"ptrscan/errs"
	"ptrscan/memory"
	"ptrscan/ptrindex"
	"ptrscan/scan"
)

func newReplCmd() *cobra.Command {
	var binIn, infoIn string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "load a snapshot once and repeatedly scan it interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(binIn, infoIn)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&binIn, "bin-in", "", "pair file produced by build")
	flags.StringVar(&infoIn, "info-in", "", "module file produced by build")
	cmd.MarkFlagRequired("bin-in")
	cmd.MarkFlagRequired("info-in")
	return cmd
}

func runRepl(binIn, infoIn string) error {
	binFile, err := os.Open(binIn)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", errs.ErrIO, binIn, err)
	}
	forwardIdx, reverse, err := ptrindex.LoadPairs(binFile)
	binFile.Close()
	if err != nil {
		return err
	}

	infoFile, err := os.Open(infoIn)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", errs.ErrIO, infoIn, err)
	}
	modules, err := ptrindex.LoadModules(infoFile)
	infoFile.Close()
	if err != nil {
		return err
	}

	roots := scan.Roots(forwardIdx, modules)

	rl, err := readline.New("ptrscan> ")
	if err != nil {
		return fmt.Errorf("%w: starting readline: %v", errs.ErrIO, err)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), "loaded", forwardIdx.Len(), "pairs,", len(roots), "root(s). Type a target address (hex), or 'quit'.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: readline: %v", errs.ErrIO, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := replScanOnce(rl.Stdout(), line, roots, reverse, modules); err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
	}
}

// replScanOnce runs one scan with fixed, conservative defaults — a depth
// of 8, node_min of 1, and an exact (zero-width) window — against the
// already-loaded snapshot. It exists to make repeated target lookups
// cheap once build's expensive part (loading the snapshot) is done once.
func replScanOnce(w io.Writer, targetHex string, roots []memory.Address, reverse *ptrindex.ReverseIndex, modules *ptrindex.ModuleIndex) error {
	target, err := parseHexAddress(targetHex)
	if err != nil {
		return err
	}
	param := scan.Param{Depth: 8, Target: target, NodeMin: 1}
	count := 0
	err = scan.Scan(param, roots, reverse, modules, true, func(e scan.Emission) (scan.Outcome, error) {
		count++
		_, werr := writeEmission(w, false, e)
		return scan.Continue, werr
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d chain(s)\n", count)
	return nil
}
