package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"eth_block_explorer/pkg/blockexplorer"
)

func newCandidatesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List the block numbers offered for selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			rt, err := buildRuntime(cmd.Context(), cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer rt.Close()

			return runCandidates(cmd.Context(), rt, cmd.OutOrStdout())
		},
	}
}

// runCandidates loads the candidate list and renders it as a table.
func runCandidates(ctx context.Context, rt *runtime, out io.Writer) error {
	if err := rt.explorer.Initialize(ctx); err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Block", "Hex", "Label"})
	table.SetAutoFormatHeaders(false)
	for i, n := range rt.explorer.State().Candidates {
		table.Append([]string{
			strconv.Itoa(i),
			strconv.FormatInt(n, 10),
			hexBlockNumber(n),
			fmt.Sprintf(blockexplorer.BlockLabelFormat, n),
		})
	}
	table.Render()
	return nil
}

func hexBlockNumber(n int64) string {
	if n < 0 {
		return "-"
	}
	return "0x" + strconv.FormatInt(n, 16)
}
