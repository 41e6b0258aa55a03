package main

import (
	"fmt"

	"github.com/spf13/cobra"

	xdgclient "github.com/0xADE/ade-xdgd/client/xdg"
	"github.com/0xADE/ade-xdgd/internal/config"
)

var remoteSocket string

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.Flags().StringVar(&remoteSocket, "socket", "", "daemon socket (default: from ADE_XDGD_SOCK)")
}

var remoteCmd = &cobra.Command{
	Use:   "remote CMD [ARG...]",
	Short: "Send one protocol command to a running ade-xdgd",
	Long: `Send one protocol command to a running ade-xdgd. Arguments are pushed
in order: integers and t/f keep their type, anything else is sent as a string.

  ade-xdg remote icon preferences-system 48 2
  ade-xdg remote resolve org.kde.kate`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		socket := remoteSocket
		if socket == "" {
			socket = config.Get().UnixSocket()
		}
		client, err := xdgclient.Dial(socket)
		if err != nil {
			return err
		}
		defer client.Close()

		resp, err := client.Call(args[0], args[1:]...)
		if resp == nil {
			return err
		}
		if encErr := encode(cmd.OutOrStdout(), resp); encErr != nil {
			return encErr
		}
		if err != nil {
			return fmt.Errorf("server replied with an error: %w", err)
		}
		return nil
	},
}
