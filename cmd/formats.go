package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tablelens/internal/loader"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input formats and the extensions that select them",
	Example: `  tablelens formats
  tablelens analyze data.txt --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, f := range loader.Formats() {
			fmt.Fprintf(out, "%-6s %s\n", f.Name, strings.Join(f.Extensions, ", "))
		}
		fmt.Fprintln(out, "Sources without a known extension are read as csv unless --format is given.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
