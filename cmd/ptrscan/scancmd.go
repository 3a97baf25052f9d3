package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ptrscan/errs"
	"ptrscan/memory"
	"ptrscan/ptrcodec"
	"ptrscan/ptrindex"
	"ptrscan/scan"
)

func newScanCmd() *cobra.Command {
	var (
		binIn, infoIn, out string
		targetHex          string
		depth, nodeMin     int
		back, forward      uint64
		absolute           bool
		limit              int
		lastEq             int64
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "search a pointer-map snapshot for chains reaching a target address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth <= nodeMin {
				return fmt.Errorf("%w: --depth (%d) must be greater than --node-min (%d)", errs.ErrParams, depth, nodeMin)
			}
			target, err := parseHexAddress(targetHex)
			if err != nil {
				return err
			}
			opts := scanCLIOptions{
				binIn: binIn, infoIn: infoIn, out: out,
				target: target, depth: depth, nodeMin: nodeMin,
				back: back, forward: forward, absolute: absolute,
				limit: limit, hasLastEq: cmd.Flags().Changed("last-eq"), lastEq: lastEq,
			}
			return runScan(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&binIn, "bin-in", "", "pair file produced by build")
	flags.StringVar(&infoIn, "info-in", "", "module file produced by build")
	flags.StringVar(&targetHex, "target", "", "target address, hex, with or without 0x prefix")
	flags.IntVar(&depth, "depth", 8, "maximum chain length")
	flags.IntVar(&nodeMin, "node-min", 1, "minimum chain length to report")
	flags.Uint64Var(&back, "offset-back", 0, "window: bytes below the current address tolerated at each hop")
	flags.Uint64Var(&forward, "offset-forward", 0, "window: bytes above the current address tolerated at each hop")
	flags.BoolVar(&absolute, "absolute", false, "emit absolute addresses instead of module-relative names")
	flags.StringVar(&out, "out", "", "result file (defaults to stdout)")
	flags.IntVar(&limit, "limit", 0, "stop after this many chains (0 = unlimited)")
	flags.Int64Var(&lastEq, "last-eq", 0, "only report chains whose innermost offset equals this")
	cmd.MarkFlagRequired("bin-in")
	cmd.MarkFlagRequired("info-in")
	cmd.MarkFlagRequired("target")

	return cmd
}

type scanCLIOptions struct {
	binIn, infoIn, out string
	target             memory.Address
	depth, nodeMin     int
	back, forward      uint64
	absolute           bool
	limit              int
	hasLastEq          bool
	lastEq             int64
}

func runScan(o scanCLIOptions) error {
	binFile, err := os.Open(o.binIn)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", errs.ErrIO, o.binIn, err)
	}
	defer binFile.Close()
	_, reverse, err := ptrindex.LoadPairs(binFile)
	if err != nil {
		return err
	}

	infoFile, err := os.Open(o.infoIn)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", errs.ErrIO, o.infoIn, err)
	}
	defer infoFile.Close()
	modules, err := ptrindex.LoadModules(infoFile)
	if err != nil {
		return err
	}

	binFile2, err := os.Open(o.binIn)
	if err != nil {
		return fmt.Errorf("%w: reopening %s: %v", errs.ErrIO, o.binIn, err)
	}
	defer binFile2.Close()
	forwardIdx, _, err := ptrindex.LoadPairs(binFile2)
	if err != nil {
		return err
	}
	roots := scan.Roots(forwardIdx, modules)

	var w io.Writer = os.Stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("%w: creating %s: %v", errs.ErrIO, o.out, err)
		}
		defer f.Close()
		w = f
	}

	var sink scan.PerChain = func(e scan.Emission) (scan.Outcome, error) {
		return writeEmission(w, o.absolute, e)
	}
	if o.hasLastEq {
		sink = scan.Filter(scan.LastEq(o.lastEq), sink)
	}
	if o.limit > 0 {
		sink = scan.Limit(o.limit, sink)
	}

	param := scan.Param{
		Depth:   o.depth,
		Target:  o.target,
		NodeMin: o.nodeMin,
		Window:  scan.Window{Back: o.back, Forward: o.forward},
	}
	return scan.Scan(param, roots, reverse, modules, !o.absolute, sink)
}

func writeEmission(w io.Writer, absolute bool, e scan.Emission) (scan.Outcome, error) {
	var c ptrcodec.Chain
	if !absolute && e.Module != nil {
		c = ptrcodec.Chain{Name: e.Module.Name, Base: uint64(e.Head.Sub(e.Module.Start)), Offsets: e.Offsets}
	} else {
		c = ptrcodec.Chain{Base: uint64(e.Head), Offsets: e.Offsets}
	}
	if err := ptrcodec.WriteChain(w, c); err != nil {
		return scan.Continue, err
	}
	return scan.Continue, nil
}

// parseHexAddress parses a hex address with an optional "0x"/"0X" prefix.
func parseHexAddress(s string) (memory.Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid target address %q: %v", errs.ErrParams, s, err)
	}
	return memory.Address(v), nil
}
