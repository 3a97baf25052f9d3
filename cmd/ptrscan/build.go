package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ptrscan/classify"
	"ptrscan/errs"
	"ptrscan/memory"
	"ptrscan/pointermap"
)

func newBuildCmd() *cobra.Command {
	var (
		pid        int
		aligned    bool
		bestEffort bool
		binOut     string
		infoOut    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "attach to a process and snapshot its pointer map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(pid, aligned, bestEffort, binOut, infoOut)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&pid, "pid", 0, "target process id")
	flags.BoolVar(&aligned, "aligned", true, "restrict the scan to word-aligned positions")
	flags.BoolVar(&bestEffort, "best-effort", false, "skip a region whose read fails instead of aborting")
	flags.StringVar(&binOut, "bin-out", "pointers.bin", "output path for the pair file")
	flags.StringVar(&infoOut, "info-out", "modules.txt", "output path for the module list")
	cmd.MarkFlagRequired("pid")

	return cmd
}

func runBuild(pid int, aligned, bestEffort bool, binOut, infoOut string) error {
	provider, closeProvider, err := newPlatformProvider(pid)
	if err != nil {
		return err
	}
	defer closeProvider()

	regions, err := provider.EnumerateRegions()
	if err != nil {
		return fmt.Errorf("%w: enumerating regions: %v", errs.ErrProvider, err)
	}

	open := func(path string) (io.ReadCloser, error) { return os.Open(path) }

	var source, modules []memory.Region
	for _, r := range regions {
		switch classify.Classify(r, open) {
		case classify.ClassModule:
			source = append(source, r)
			modules = append(modules, r)
		case classify.ClassSource:
			source = append(source, r)
		}
	}

	binFile, err := os.Create(binOut)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", errs.ErrIO, binOut, err)
	}
	defer binFile.Close()

	infoFile, err := os.Create(infoOut)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", errs.ErrIO, infoOut, err)
	}
	defer infoFile.Close()

	opts := pointermap.Options{Aligned: aligned, BestEffort: bestEffort}
	if err := pointermap.Build(source, modules, provider, opts, binFile, infoFile); err != nil {
		return err
	}

	fmt.Printf("scanned %d source region(s), %d module(s)\n", len(source), len(modules))
	return nil
}
