package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/tablelens/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tablelens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := ensureConfig()
		out := cmd.OutOrStdout()
		for _, k := range cfgpkg.Keys {
			v, err := c.Get(k)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := ensureConfig()
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
