package main

import (
	"errors"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/0xADE/ade-xdgd/internal/category"
	"github.com/0xADE/ade-xdgd/internal/config"
	"github.com/0xADE/ade-xdgd/internal/indexer"
	"github.com/0xADE/ade-xdgd/internal/resultdb"
	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
)

var (
	indexSkip          []string
	indexDB            string
	indexSave          bool
	indexIncludeHidden bool
)

func init() {
	rootCmd.AddCommand(indexCmd)
	flags := indexCmd.Flags()
	flags.StringArrayVar(&indexSkip, "skip", nil, "glob of desktop IDs to leave out (repeatable)")
	flags.StringVar(&indexDB, "db", "", "result store path (default: the daemon's store)")
	flags.BoolVar(&indexSave, "save", false, "write the result to the result store")
	flags.BoolVar(&indexIncludeHidden, "include-hidden", false, "keep entries not meant for display")
}

var indexCmd = &cobra.Command{
	Use:   "index [ID...]",
	Short: "Resolve many desktop IDs at once, all installed ones by default",
	RunE: func(cmd *cobra.Command, args []string) error {
		dirLocator := desktop.NewLocator(desktop.DirectoryEntries, opts.env, opts.extraDirs)
		registry, err := category.Load(dirLocator, category.DefaultMap)
		if err != nil {
			slog.Debug("incomplete category registry", "error", err)
		}

		idx, err := indexer.NewIndexer(indexer.Options{
			Env:           opts.env,
			ExtraDirs:     opts.extraDirs,
			Theme:         opts.theme,
			Size:          opts.size,
			Scale:         opts.scale,
			DesktopEnv:    opts.desktopEnv,
			Lang:          opts.lang,
			IncludeHidden: indexIncludeHidden,
			Skip:          indexSkip,
			Workers:       config.Get().Workers(),
			Registry:      registry,
		})
		if err != nil {
			return err
		}

		if _, err := idx.Reindex(cmd.Context(), args); err != nil {
			var merr *multierror.Error
			if !errors.As(err, &merr) {
				return err
			}
			for _, e := range merr.Errors {
				slog.Warn("entry skipped", "error", e)
			}
		}
		entries := idx.GetIndex().GetAll()

		if indexSave {
			store, err := resultdb.Open(dbPath())
			if err != nil {
				return err
			}
			defer store.Close()
			if len(args) == 0 {
				err = store.Replace(entries)
			} else {
				for _, entry := range entries {
					if err = store.Put(entry); err != nil {
						break
					}
				}
			}
			if err != nil {
				return err
			}
		}
		return encode(cmd.OutOrStdout(), entries)
	},
}

func dbPath() string {
	if indexDB != "" {
		return indexDB
	}
	return config.Get().DBPath()
}
