package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ptrscan/errs"
)

func newDiffCmd() *cobra.Command {
	var a, b, out string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "intersect two result files, keeping lines common to both",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(a, b, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&a, "a", "", "first result file")
	flags.StringVar(&b, "b", "", "second result file")
	flags.StringVar(&out, "out", "", "output file (defaults to stdout)")
	cmd.MarkFlagRequired("a")
	cmd.MarkFlagRequired("b")
	return cmd
}

func runDiff(aPath, bPath, outPath string) error {
	aLines, err := readLineSet(aPath)
	if err != nil {
		return err
	}
	bLines, err := readLineSet(bPath)
	if err != nil {
		return err
	}

	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("%w: creating %s: %v", errs.ErrIO, outPath, err)
		}
		defer f.Close()
		w = f
	}

	// Preserve a's order so repeated diffs against a stable baseline read
	// the same way every time.
	for _, line := range aLines.order {
		if bLines.set[line] {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

type lineSet struct {
	order []string
	set   map[string]bool
}

func readLineSet(path string) (lineSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return lineSet{}, fmt.Errorf("%w: opening %s: %v", errs.ErrIO, path, err)
	}
	defer f.Close()

	ls := lineSet{set: make(map[string]bool)}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !ls.set[line] {
			ls.order = append(ls.order, line)
		}
		ls.set[line] = true
	}
	if err := sc.Err(); err != nil {
		return lineSet{}, fmt.Errorf("%w: reading %s: %v", errs.ErrIO, path, err)
	}
	return ls, nil
}
