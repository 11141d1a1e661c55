package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	abFlags analysisFlags
	abQuiet bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/JSON/XLSX files in sequence with progress",
	Long: `Analyze-batch expands each argument as a glob, then runs a fresh analysis
per matched file. With --out, figure files are prefixed with the source
file name. A failing file is reported and the batch moves on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		c := ensureConfig()
		run, err := newRunner(cmd, &abFlags, c)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			w := out
			if abQuiet {
				w = io.Discard
			}
			base := filepath.Base(path)
			res, paths := run.analyze(cmd.Context(), w, path, strings.TrimSuffix(base, filepath.Ext(base)))
			if !abQuiet {
				printWritten(out, paths)
			}
			if !res.OK() {
				failed++
				if abQuiet {
					fmt.Fprintf(out, "✗ %s: %v\n", base, res.Err)
				}
			}
		}
		if failed > 0 {
			fmt.Fprintf(out, "⚠ Analyzed %d of %d files (%d failed)\n", total-failed, total, failed)
		} else {
			fmt.Fprintf(out, "✓ Analyzed %d file(s)\n", total)
		}
		return nil
	},
}

// expandInputs globs each argument, keeps literal paths that exist, and
// returns the de-duplicated result in sorted order.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	addAnalysisFlags(analyzeBatchCmd.Flags(), &abFlags)
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and per-file reports")
}
