package cli

import (
	"github.com/spf13/cobra"

	"github.com/synheart/synheart-monitor/internal/config"
)

// GlobalOptions are shared flags that apply across commands.
type GlobalOptions struct {
	ConfigPath   string
	ProfilesFile string
	LogLevel     string
	LogFormat    string
}

var globalOpts GlobalOptions

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&globalOpts.ConfigPath, "config", "", "YAML config file")
	flags.StringVar(&globalOpts.ProfilesFile, "profiles", "", "Rhythm profile table (YAML), defaults to the built-in table")
	flags.StringVar(&globalOpts.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	flags.StringVar(&globalOpts.LogFormat, "log-format", "", "Log format: console|json")
}

// loadConfig reads the config file and environment, then applies the
// global flags that were set explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(globalOpts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("profiles") {
		cfg.Monitor.ProfilesFile = globalOpts.ProfilesFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = globalOpts.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = globalOpts.LogFormat
	}
	return cfg, nil
}
