// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/research"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Forward research questions to an external provider",
	Long: `Research forwards a finalized set of research questions to one of the
supported providers (perplexity, elicit) and prints the provider's raw JSON
payload. Provider API keys load from .secrets/ or configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		questions, _ := cmd.Flags().GetStringArray("question")
		sessionID, _ := cmd.Flags().GetString("session")

		cfg := loadWorkflowConfig()
		d := &research.Dispatcher{
			Config: cfg.Research,
			Policy: newPolicy(cfg.Retry),
			Client: &http.Client{Timeout: cfg.Research.Timeout},
		}

		payload, err := d.Dispatch(cmd.Context(), research.Request{
			Questions: questions,
			Provider:  research.Provider(provider),
			SessionID: sessionID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	},
}

func init() {
	researchCmd.Flags().String("provider", "", `research provider ("perplexity" or "elicit")`)
	researchCmd.Flags().StringArray("question", nil, "research question (repeatable)")
	researchCmd.Flags().String("session", "", "session identifier")

	rootCmd.AddCommand(researchCmd)
}
