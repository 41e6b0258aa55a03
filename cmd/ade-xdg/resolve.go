package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/0xADE/ade-xdgd/internal/xdg/icon"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&desktopTree, "tree", "", "search this source tree instead of the data directories")
}

type resolution struct {
	ID       string `json:"id" yaml:"id"`
	Desktop  string `json:"desktop" yaml:"desktop"`
	IconName string `json:"icon_name,omitempty" yaml:"icon_name,omitempty"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve ID",
	Short: "Resolve a desktop ID to its desktop file and icon file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locator, err := newLocator("applications")
		if err != nil {
			return err
		}
		d, err := locator.Find(args[0])
		if err != nil {
			return err
		}

		result := resolution{ID: args[0], Desktop: d.Path(), IconName: d.Icon()}
		if result.IconName != "" {
			theme, err := icon.LoadTheme(opts.theme, opts.extraDirs, opts.env)
			if err != nil {
				return err
			}
			var resolver icon.Resolver
			path, err := resolver.Resolve(result.IconName, opts.size, opts.scale, theme)
			if err != nil && !errors.Is(err, icon.ErrNotFound) {
				return err
			}
			result.Icon = path
		}
		return encode(cmd.OutOrStdout(), result)
	},
}
