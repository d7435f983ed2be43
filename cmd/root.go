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
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/valpere/anuvad/internal/config"
	"github.com/valpere/anuvad/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile   string
	v         = config.New()
	appConfig *config.Config
	logger    = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "anuvad",
	Short: "Multilingual translation portal",
	Long: `Translate text, speech and documents between English and the 22
scheduled languages of India.

Modes:
  text       translate typed text (cached)
  voice      recognize speech, translate it, speak the result
  document   translate a file and save translated_<name>.txt
  serve      expose all modes over HTTP

Use "anuvad languages" to list supported language codes.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./anuvad.yaml or $HOME/.anuvad.yaml)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "console", "Log format (console or json)")
	pf.StringSlice("services", []string{"mymemory"}, "Translation services to use (mymemory, google, ollama)")
	pf.String("db", "./data/anuvad.db", "Translation cache database path")
	pf.Bool("no-cache", false, "Disable the translation cache")

	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = v.BindPFlag("translation.services", pf.Lookup("services"))
	_ = v.BindPFlag("cache.path", pf.Lookup("db"))
}

func initConfig() error {
	if cfgFile == "" {
		cfgFile = findConfigFile()
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	if noCache, _ := rootCmd.PersistentFlags().GetBool("no-cache"); noCache {
		v.Set("cache.enabled", false)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appConfig = cfg

	logger, err = logging.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	if cfgFile != "" {
		logger.Debug().Str("file", v.ConfigFileUsed()).Msg("configuration loaded")
	}
	return nil
}

// findConfigFile returns the first existing default config location.
func findConfigFile() string {
	candidates := []string{"anuvad.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".anuvad.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// signalContext is canceled on Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
