package main

import (
	"fmt"
	"os"

	"github.com/ronwebb/ghinfer/internal/config"
	"github.com/ronwebb/ghinfer/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ghinfer",
	Short: "Chat completions against GitHub Models and friends",
	Long:  `ghinfer adapts chat completions with tool calling onto GitHub Models and other OpenAI-compatible inference endpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ghinfer/config.yaml)")
	rootCmd.PersistentFlags().String("log_level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("models.default", config.DefaultModelDefault, "default model name")
	rootCmd.PersistentFlags().String("models.fallback", "", "fallback model name")
}
