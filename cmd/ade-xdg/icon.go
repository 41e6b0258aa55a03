package main

import (
	"github.com/spf13/cobra"

	"github.com/0xADE/ade-xdgd/internal/xdg/icon"
)

func init() {
	rootCmd.AddCommand(iconCmd)
}

var iconCmd = &cobra.Command{
	Use:   "icon NAME",
	Short: "Find the file for an icon name in the selected theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := icon.LoadTheme(opts.theme, opts.extraDirs, opts.env)
		if err != nil {
			return err
		}

		var resolver icon.Resolver
		path, err := resolver.Resolve(args[0], opts.size, opts.scale, theme)
		if err != nil {
			return err
		}

		chain := make([]string, 0)
		for _, t := range theme.Chain() {
			chain = append(chain, t.Name)
		}
		return encode(cmd.OutOrStdout(), map[string]any{
			"icon":  args[0],
			"size":  opts.size,
			"scale": opts.scale,
			"theme": theme.Name,
			"valid": theme.Valid(),
			"chain": chain,
			"path":  path,
		})
	},
}
