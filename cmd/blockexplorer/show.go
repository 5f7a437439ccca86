package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [block]",
		Short: "Print a block and the receipt of its first transaction as JSON",
		Long: `show selects the given block number, or the latest block when none is given,
and prints the resulting view state as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *int64
			if len(args) == 1 {
				n, err := strconv.ParseInt(args[0], 0, 64)
				if err != nil {
					return fmt.Errorf("invalid block number %q: %w", args[0], err)
				}
				target = &n
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			rt, err := buildRuntime(cmd.Context(), cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer rt.Close()

			return runShow(cmd.Context(), rt, target, cmd.OutOrStdout())
		},
	}
}

// runShow selects target, or the newest candidate when target is nil, and writes the state to out.
// The state is written even when the selection failed.
func runShow(ctx context.Context, rt *runtime, target *int64, out io.Writer) error {
	if target == nil {
		if err := rt.explorer.Initialize(ctx); err != nil {
			return err
		}
		candidates := rt.explorer.State().Candidates
		if len(candidates) == 0 {
			return errors.New("node reported no blocks")
		}
		target = &candidates[0]
	}

	selectErr := rt.explorer.Select(ctx, *target)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rt.explorer.State()); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return selectErr
}
