package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"eth_block_explorer/internal/adapters/tui"
)

func newTUICmd(root *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse blocks interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}

			rt, err := buildRuntime(cmd.Context(), cfg, logOut)
			if err != nil {
				return err
			}
			defer rt.Close()

			return tui.Run(cmd.Context(), rt.explorer)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of discarding them")
	return cmd
}
