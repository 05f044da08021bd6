package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mercari-build-training/simple-mercari/tui/internal/app"
	"github.com/mercari-build-training/simple-mercari/tui/internal/backend"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	apiURL     string
	timeout    time.Duration
	logFile    string
	itemsFile  string
	debug      bool
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          app.AppName,
		Short:        "Interactive terminal UI for Simple Mercari.",
		Version:      app.AppVersion,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			closer, err := app.SetupLogging(cfg.Log.File, cfg.Log.Level)
			if err != nil {
				return err
			}
			defer closer.Close()

			return app.Run(cfg)
		},
	}

	root.Flags().StringVar(&opts.configPath, "config", backend.DefaultConfigPath(app.AppName), "config file")
	root.Flags().StringVar(&opts.apiURL, "api-url", "", "API base URL (default "+backend.DefaultAPIURL+")")
	root.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 10s)")
	root.Flags().StringVar(&opts.logFile, "log-file", "", "log file path")
	root.Flags().StringVar(&opts.itemsFile, "watch", "", "items.json to watch for external changes")
	root.Flags().BoolVar(&opts.debug, "debug", false, "log at debug level")

	root.AddCommand(versionCmd())
	return root
}

// loadConfig layers the config file, environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, opts options) (backend.Config, error) {
	cfg, err := backend.ReadConfigFile(opts.configPath, app.AppName)
	if err != nil {
		return backend.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.URL = opts.apiURL
	}
	if flags.Changed("timeout") {
		cfg.API.Timeout = opts.timeout
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if flags.Changed("watch") {
		cfg.Watch.ItemsFile = opts.itemsFile
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s tui %s\n", app.AppName, app.AppVersion)
		},
	}
}
