// Intcode CLI - runs Intcode programs locally, as amplifier networks, or
// through a remote MachineService.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/intcode/config"
)

var (
	configPath string
	wordFlag   string
	verbosity  int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "intcode",
	Short:        "Intcode virtual machine",
	Long:         "Run Intcode programs, chain them into amplifier networks, or serve them over RPC.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("word") {
			cfg.Machine.Word = wordFlag
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		level := cfg.Log.Verbosity
		if verbosity > 0 {
			level = verbosity
		}
		var path *string
		if cfg.Log.File != "" {
			path = &cfg.Log.File
		}
		commonlog.Configure(level, path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to intcode.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&wordFlag, "word", "", "Machine word: int32 or int64 (default from intcode.toml, else int64)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
}

// loadConfig reads the file at path, or the nearest intcode.toml when path
// is empty. Without any file the defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	c, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return config.Default(), nil
	}
	return c, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
