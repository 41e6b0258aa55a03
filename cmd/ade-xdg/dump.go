package main

import (
	"github.com/spf13/cobra"

	"github.com/0xADE/ade-xdgd/internal/indexer"
	"github.com/0xADE/ade-xdgd/internal/resultdb"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&indexDB, "db", "", "result store path (default: the daemon's store)")
}

type storedEntry struct {
	indexer.Entry `yaml:",inline"`
	Lookups       uint64 `json:"lookups" yaml:"lookups"`
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the entries kept in the result store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := resultdb.Open(dbPath())
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.All()
		if err != nil {
			return err
		}
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		hits := store.Hits(ids)

		result := make([]storedEntry, len(entries))
		for i, e := range entries {
			result[i] = storedEntry{Entry: *e, Lookups: hits[e.ID]}
		}
		return encode(cmd.OutOrStdout(), result)
	},
}
