// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hypothesis-engine/internal/retry"
	"github.com/pdiddy/hypothesis-engine/internal/workflow"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Run one workflow stage for a concept",
	Long: `Stage runs a single step of the workflow: 1 analyzes the concept and
proposes candidate domains, 2 blends the concept with a chosen domain into
candidate frameworks, and 3 generates research questions from a chosen
framework finding. Stage 2 requires --domain; stage 3 requires --domain and
--finding.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stage, _ := cmd.Flags().GetInt("stage")
		concept, _ := cmd.Flags().GetString("concept")
		domain, _ := cmd.Flags().GetString("domain")
		finding, _ := cmd.Flags().GetString("finding")
		sessionID, _ := cmd.Flags().GetString("session")
		outputDir, _ := cmd.Flags().GetString("output")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := loadWorkflowConfig()
		o := newOrchestrator(cfg)

		sess := types.NewSession()
		if sessionID != "" {
			sess.ID = sessionID
		}
		// Each invocation is stateless: seed the session at the stage the
		// supplied inputs imply.
		sess.Stage = stage - 1

		result, err := o.Advance(cmd.Context(), sess, workflow.StageRequest{
			Stage:   stage,
			Concept: concept,
			Domain:  domain,
			Finding: finding,
		})
		if err != nil {
			return err
		}

		if outputDir != "" {
			path, err := writeResult(outputDir, sess, result)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Wrote", path)
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), sess, result)
		}
		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	stageCmd.Flags().Int("stage", 1, "workflow stage to run (1-3)")
	stageCmd.Flags().String("concept", "", "concept under analysis (12 words or less)")
	stageCmd.Flags().String("domain", "", "chosen domain (stages 2 and 3)")
	stageCmd.Flags().String("finding", "", "chosen framework finding (stage 3)")
	stageCmd.Flags().String("session", "", "session identifier (defaults to a fresh uuid)")
	stageCmd.Flags().String("output", "", "directory for the stage result YAML file")
	stageCmd.Flags().Bool("json", false, "print the result as JSON")

	rootCmd.AddCommand(stageCmd)
}

// newOrchestrator wires the Claude backend and retry policy from config.
// Retry attempts are reported on stderr.
func newOrchestrator(cfg types.WorkflowConfig) *workflow.Orchestrator {
	backend := &workflow.ClaudeBackend{
		Config: cfg.Model,
		Client: &http.Client{Timeout: cfg.Model.Timeout},
	}
	return workflow.NewOrchestrator(backend, cfg.Prompts, newPolicy(cfg.Retry))
}

func newPolicy(cfg types.RetryConfig) retry.Policy {
	return retry.Policy{
		MaxRetries: cfg.MaxRetries,
		Delay:      cfg.RetryDelay,
		OnRetry: func(attempt int, err error) {
			fmt.Fprintf(os.Stderr, "retrying after failure (attempt %d): %v\n", attempt, err)
		},
	}
}

// resultFile is the YAML document written for one stage result.
type resultFile struct {
	Session string            `yaml:"session"`
	Stage   int               `yaml:"stage"`
	Type    types.ResultType  `yaml:"type"`
	Result  types.StageResult `yaml:"result"`
}

// writeResult writes the stage result to dir/<session>-stage<N>.yaml.
func writeResult(dir string, sess *types.Session, result types.StageResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(resultFile{
		Session: sess.ID,
		Stage:   sess.Stage,
		Type:    result.Type(),
		Result:  result,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-stage%d.yaml", sess.ID, sess.Stage))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}
	return path, nil
}

func printJSON(w io.Writer, sess *types.Session, result types.StageResult) error {
	out := struct {
		SessionID string            `json:"sessionId"`
		Stage     int               `json:"stage"`
		Type      types.ResultType  `json:"type"`
		Result    types.StageResult `json:"result"`
	}{sess.ID, sess.Stage, result.Type(), result}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// printResult renders the typed options as a numbered list, or the raw
// content when extraction found no structure.
func printResult(w io.Writer, result types.StageResult) {
	switch r := result.(type) {
	case types.DomainSelection:
		if len(r.Options) == 0 {
			fmt.Fprintln(w, r.Content)
			return
		}
		fmt.Fprintln(w, "Candidate domains:")
		for _, opt := range r.Options {
			fmt.Fprintf(w, "  %s. %s\n", opt.ID, opt.Name)
		}
	case types.FrameworkSelection:
		if len(r.Options) == 0 {
			fmt.Fprintln(w, r.Content)
			return
		}
		fmt.Fprintln(w, "Candidate frameworks:")
		for _, opt := range r.Options {
			fmt.Fprintf(w, "  %s. %s: %s\n", opt.ID, opt.Title, opt.Description)
		}
	case types.ResearchQuestions:
		if len(r.Options) == 0 {
			fmt.Fprintln(w, r.Content)
			return
		}
		fmt.Fprintln(w, "Research questions:")
		for _, q := range r.Options {
			fmt.Fprintf(w, "  %s. %s\n", q.ID, q.Text)
		}
		if len(r.TopQuestions) > 0 {
			fmt.Fprintln(w, "Most promising:")
			for _, q := range r.TopQuestions {
				fmt.Fprintf(w, "  - %s\n", q)
			}
		}
	}
}
