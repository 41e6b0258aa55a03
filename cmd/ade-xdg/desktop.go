package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
)

var (
	desktopKind string
	desktopTree string
)

func init() {
	rootCmd.AddCommand(desktopCmd)
	desktopCmd.Flags().StringVar(&desktopKind, "kind", "applications", "applications or desktop-directories")
	desktopCmd.Flags().StringVar(&desktopTree, "tree", "", "search this source tree instead of the data directories")
}

var desktopCmd = &cobra.Command{
	Use:   "desktop ID",
	Short: "Locate and describe a desktop or directory entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locator, err := newLocator(desktopKind)
		if err != nil {
			return err
		}
		d, err := locator.Find(args[0])
		if err != nil {
			return err
		}
		return encode(cmd.OutOrStdout(), describeDesktop(args[0], d))
	},
}

type desktopInfo struct {
	ID         string   `json:"id" yaml:"id"`
	Path       string   `json:"path" yaml:"path"`
	Name       string   `json:"name" yaml:"name"`
	Icon       string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	OnlyShowIn []string `json:"only_show_in,omitempty" yaml:"only_show_in,omitempty"`
	NotShowIn  []string `json:"not_show_in,omitempty" yaml:"not_show_in,omitempty"`
	Display    bool     `json:"display" yaml:"display"`
	Hidden     bool     `json:"hidden" yaml:"hidden"`
	Visible    *bool    `json:"visible,omitempty" yaml:"visible,omitempty"`
}

func describeDesktop(id string, d *desktop.Desktop) desktopInfo {
	info := desktopInfo{
		ID:         id,
		Path:       d.Path(),
		Name:       d.LocalizedValue("Name", opts.lang),
		Icon:       d.Icon(),
		Categories: d.Categories(),
		OnlyShowIn: d.OnlyShowIn(),
		NotShowIn:  d.NotShowIn(),
		Display:    d.Display(),
		Hidden:     d.Hidden(),
	}
	if opts.desktopEnv != "" {
		visible := d.Visible(opts.desktopEnv)
		info.Visible = &visible
	}
	return info
}

func newLocator(kindName string) (*desktop.Locator, error) {
	kind, ok := desktop.KindByName(kindName)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kindName)
	}
	if desktopTree != "" {
		return &desktop.Locator{Kind: kind, Source: desktop.TreeSource{Dir: desktopTree}}, nil
	}
	return desktop.NewLocator(kind, opts.env, opts.extraDirs), nil
}
