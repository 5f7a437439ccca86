package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eth_block_explorer/internal/config"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configFile string
	overrides  overrides
	cmd        *cobra.Command
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "blockexplorer",
		Short: "Browse the most recent Ethereum blocks and the receipt of their first transaction",
		Long: `blockexplorer lists the latest blocks of an Ethereum node. Selecting a block
loads it with all of its transactions and then the receipt of its first transaction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.cmd = cmd

	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.configFile, "config", "c", "",
		"Path to YAML configuration file (default: "+config.DefaultConfigFilePath+")")
	registerOverrideFlags(fs, &opts.overrides)

	cmd.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newShowCmd(opts),
		newCandidatesCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration file and applies the command line overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(o.cmd.PersistentFlags(), &o.overrides, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command line override: %w", err)
	}
	return cfg, nil
}
