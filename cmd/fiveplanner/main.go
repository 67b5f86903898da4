package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fiveplanner",
	Short: "Five Planner: 5-a-side football session planner",
	Long:  "Five Planner keeps a roster of players, groups and pitches, organises 5v5 sessions, collects attendance answers and computes attendance statistics.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults and FIVEPLANNER_* variables)")
}

// loadConfig reads .env, the config file and the environment, then validates.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
