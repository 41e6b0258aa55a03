package main

import (
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/0xADE/ade-xdgd/internal/category"
	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
)

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

type categoryInfo struct {
	Category  string `json:"category" yaml:"category"`
	Name      string `json:"name" yaml:"name"`
	Icon      string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty"`
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the main menu categories and their directory entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		locator := desktop.NewLocator(desktop.DirectoryEntries, opts.env, opts.extraDirs)
		registry, err := category.Load(locator, category.DefaultMap)
		if err != nil {
			slog.Warn("incomplete category registry", "error", err)
		}

		names := registry.Categories()
		sort.Strings(names)
		result := make([]categoryInfo, 0, len(names))
		for _, c := range names {
			info := categoryInfo{
				Category: c,
				Name:     registry.LocalizedName(c, opts.lang),
				Icon:     registry.Icon(c),
			}
			if d, ok := registry.Entry(c); ok {
				info.Directory = d.Path()
			}
			result = append(result, info)
		}
		return encode(cmd.OutOrStdout(), result)
	},
}
