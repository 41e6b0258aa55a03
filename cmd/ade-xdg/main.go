package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/0xADE/ade-xdgd/internal/config"
	"github.com/0xADE/ade-xdgd/internal/logging"
	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
)

// settings are the resolved persistent flags, falling back to the daemon
// configuration for anything not given on the command line.
type settings struct {
	env        basedir.Env
	extraDirs  []string
	theme      string
	size       int
	scale      int
	desktopEnv string
	lang       string
	format     string
	logLevel   string
}

var opts settings

var rootCmd = &cobra.Command{
	Use:   "ade-xdg",
	Short: "Resolve desktop entries and icons the freedesktop.org way",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg := config.Get()

		flags := cmd.Flags()
		if !flags.Changed("theme") {
			opts.theme = cfg.Theme()
		}
		if !flags.Changed("size") {
			opts.size = cfg.IconSize()
		}
		if !flags.Changed("scale") {
			opts.scale = cfg.IconScale()
		}
		if !flags.Changed("env") {
			opts.desktopEnv = cfg.DesktopEnv()
		}
		if !flags.Changed("lang") {
			opts.lang = cfg.Lang()
		}
		if !flags.Changed("log-level") {
			opts.logLevel = cfg.LogLevel()
		}
		opts.env = cfg.BaseEnv()
		opts.extraDirs = append(opts.extraDirs, cfg.ExtraDirs()...)

		switch opts.format {
		case "yaml", "json":
		default:
			return fmt.Errorf("unknown output format %q", opts.format)
		}
		return logging.Setup(os.Stderr, opts.logLevel)
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.theme, "theme", "breeze", "icon theme")
	flags.IntVar(&opts.size, "size", 48, "icon size in logical pixels")
	flags.IntVar(&opts.scale, "scale", 1, "icon scale factor")
	flags.StringArrayVar(&opts.extraDirs, "dir", nil, "extra data directory, searched first (repeatable)")
	flags.StringVar(&opts.desktopEnv, "env", "", "desktop environment for OnlyShowIn/NotShowIn")
	flags.StringVar(&opts.lang, "lang", "", "locale for localized names, e.g. de_DE")
	flags.StringVar(&opts.format, "format", "yaml", "output format: yaml or json")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")
}

// encode writes v in the selected output format.
func encode(w io.Writer, v any) error {
	if opts.format == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
