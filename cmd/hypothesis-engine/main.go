// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hypothesis-engine CLI, the thin
// surface over the three-stage analytical workflow: domain discovery,
// conceptual blending, and research question generation.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hypothesis-engine/internal/secrets"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the hypothesis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "hypothesis-engine",
	Short: "Guided concept-to-hypothesis research workflow",
	Long: `hypothesis-engine walks a concept through a three-stage analytical
workflow: discovering candidate analysis domains, blending the concept with
a chosen domain into candidate frameworks, and generating research questions
from a chosen framework. Each stage is one model call whose loosely
structured output is parsed into typed options.

Run a single stage with "stage", the whole interactive workflow with "run",
and forward finalized questions to a research provider with "research".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./hypothesis-engine.yaml or ~/.config/hypothesis-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hypothesis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hypothesis-engine"))
		}
	}

	viper.SetEnvPrefix("HYPOTHESIS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("http.timeout", 120*time.Second)
	viper.SetDefault("http.user_agent", "hypothesis-engine/"+version)
	viper.SetDefault("retry.max_retries", 3)
	viper.SetDefault("retry.retry_delay", time.Second)
	viper.SetDefault("model.max_tokens", 4000)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadWorkflowConfig assembles the typed configuration from viper and the
// loaded secrets. Prompt templates are externally supplied strings; nothing
// here validates their contents.
func loadWorkflowConfig() types.WorkflowConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
	return types.WorkflowConfig{
		Model: types.ModelConfig{
			HTTPConfig: httpCfg,
			Model:      viper.GetString("model.name"),
			APIKey:     secretDefault("anthropic-api-key", viper.GetString("model.api_key")),
			MaxTokens:  viper.GetInt("model.max_tokens"),
		},
		Prompts: types.StagePrompts{
			Stage1: viper.GetString("prompts.stage1"),
			Stage2: viper.GetString("prompts.stage2"),
			Stage3: viper.GetString("prompts.stage3"),
		},
		Retry: types.RetryConfig{
			MaxRetries: viper.GetInt("retry.max_retries"),
			RetryDelay: viper.GetDuration("retry.retry_delay"),
		},
		Research: types.ResearchConfig{
			HTTPConfig:       httpCfg,
			PerplexityAPIKey: secretDefault("perplexity-api-key", viper.GetString("research.perplexity_api_key")),
			ElicitAPIKey:     secretDefault("elicit-api-key", viper.GetString("research.elicit_api_key")),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
