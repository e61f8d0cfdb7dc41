package main

import (
	"context"
	"fmt"
	"os"

	runcmd "github.com/ClearPeaks/knime-audit/internal/cmd/run"
	cfgpkg "github.com/ClearPeaks/knime-audit/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "knime-audit",
		Short: "KNIME Server job-audit forwarder",
		Long:  "knime-audit tails the KNIME Server executor log, backs up completed jobs and forwards audit events to an AMQP broker.",
	}

	// run
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the audit daemon",
		Aliases: []string{"start"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}

			if err := runcmd.Run(context.Background(), runcmd.Options{Config: cfg}); err != nil {
				return fmt.Errorf("daemon error: %w", err)
			}
			return nil
		},
	}
	runCmd.Flags().String("config", os.Getenv("KNIME_AUDIT_CONFIG"), "Path to config file (JSON or YAML)")
	runCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	runCmd.Flags().String("log-format", "", "Log format: text|json (default text)")
	runCmd.Flags().String("data-dir", "", "Data directory for the tail cursor (if not specified, uses OS-specific application data directory)")
	rootCmd.AddCommand(runCmd)

	// config check
	configCmd := &cobra.Command{Use: "config", Short: "Config operations"}
	configCheckCmd := &cobra.Command{
		Use:   "check",
		Short: "Load and validate a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("config ok")
			return nil
		},
	}
	configCheckCmd.Flags().String("config", os.Getenv("KNIME_AUDIT_CONFIG"), "Path to config file (JSON or YAML)")
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
