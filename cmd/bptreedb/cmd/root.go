/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/bptreedb/pkg/config"
	"github.com/ssargent/bptreedb/pkg/registry"
)

type ctxKey string

const registryCtxKey ctxKey = "registry"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bptreedb",
	Short: "bptreedb - disk-backed B+ tree key/value store",
	Long: `bptreedb is a multi-dataset, disk-backed key/value store indexed
by a B+ tree over signed 32-bit integer keys.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		if cfgPath == "" {
			cfgPath = config.GetDefaultConfigPath()
		}

		var cfg *config.Config
		if config.ConfigExists(cfgPath) {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.DefaultConfig()
		}

		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}

		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		reg, err := registry.Open(registry.Config{
			BaseDir:       cfg.DataDir,
			MaxDatasets:   cfg.Registry.MaxDatasets,
			IdleTimeout:   cfg.Registry.IdleTimeout,
			EvictInterval: cfg.Registry.EvictInterval,
			DefaultOrder:  cfg.Registry.DefaultOrder,
		})
		if err != nil {
			return fmt.Errorf("failed to open registry: %w", err)
		}
		reg.StartEvictor()

		cmd.SetContext(context.WithValue(cmd.Context(), registryCtxKey, reg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the registry")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default "+config.GetDefaultConfigPath()+")")
}

func registryFromContext(cmd *cobra.Command) (*registry.Registry, error) {
	reg, ok := cmd.Context().Value(registryCtxKey).(*registry.Registry)
	if !ok {
		return nil, fmt.Errorf("registry not found in command context")
	}
	return reg, nil
}
