/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/valpere/ddgtran/internal/config"
	"github.com/valpere/ddgtran/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ddgtran",
	Short: "CLI client for the DuckDuckGo translator",
	Long: `A CLI application that translates text through DuckDuckGo's translation
endpoint. Session tokens are obtained and refreshed automatically.

Use "ddgtran translate --help" for translation options and
"ddgtran languages" for the supported language codes.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initConfig() },
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.ddgtran.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("db", config.DefaultDBPath, "Database path for translation memory")
	rootCmd.PersistentFlags().String("base-url", "", "Translator base URL (default https://duckduckgo.com)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout per request (default 30s)")
	rootCmd.PersistentFlags().IntP("concurrency", "c", config.DefaultConcurrency, "Parallel requests for batch and csv translation")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() error {
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(level)
	if err != nil {
		return err
	}
	if used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}
	return nil
}
