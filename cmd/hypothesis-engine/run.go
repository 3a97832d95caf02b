// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hypothesis-engine/internal/research"
	"github.com/pdiddy/hypothesis-engine/internal/workflow"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Walk a session through all three workflow stages interactively",
	Long: `Run drives one session through the whole workflow: it reads a concept,
presents the candidate domains, blends the chosen domain into candidate
frameworks, and generates research questions from the chosen framework.
Selections are read from stdin; the finalized questions can optionally be
forwarded to a research provider.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadWorkflowConfig()
		o := newOrchestrator(cfg)

		in := bufio.NewScanner(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		sess := types.NewSession()

		concept, err := ask(in, out, "Enter a concept to analyze (12 words or less): ")
		if err != nil {
			return err
		}
		if err := workflow.ValidateConcept(concept); err != nil {
			return err
		}

		fmt.Fprintln(out, "Analyzing concept and identifying domains...")
		result, err := o.Advance(cmd.Context(), sess, workflow.StageRequest{Stage: 1, Concept: concept})
		if err != nil {
			return err
		}
		domains := result.(types.DomainSelection)
		printResult(out, domains)

		domain, err := choose(in, out, "Which domain should we explore? ", domainNames(domains.Options))
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Blending concept with domain...")
		result, err = o.Advance(cmd.Context(), sess, workflow.StageRequest{Stage: 2, Concept: concept, Domain: domain})
		if err != nil {
			return err
		}
		frameworks := result.(types.FrameworkSelection)
		printResult(out, frameworks)

		finding, err := choose(in, out, "Which path should we explore? ", findingTexts(frameworks.Options))
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Developing hypotheses and research questions...")
		result, err = o.Advance(cmd.Context(), sess, workflow.StageRequest{
			Stage: 3, Concept: concept, Domain: domain, Finding: finding,
		})
		if err != nil {
			return err
		}
		questions := result.(types.ResearchQuestions)
		printResult(out, questions)

		if len(questions.Options) == 0 {
			return nil
		}

		provider, err := ask(in, out, "Send to a research provider? (perplexity/elicit/skip): ")
		if err != nil || provider == "" || provider == "skip" {
			return err
		}

		d := &research.Dispatcher{
			Config: cfg.Research,
			Policy: newPolicy(cfg.Retry),
			Client: &http.Client{Timeout: cfg.Research.Timeout},
		}
		payload, err := d.Dispatch(cmd.Context(), research.Request{
			Questions: questionTexts(questions.Options),
			Provider:  research.Provider(provider),
			SessionID: sess.ID,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// ask prints the prompt and returns the next trimmed input line.
func ask(in *bufio.Scanner, out io.Writer, promptText string) (string, error) {
	fmt.Fprint(out, promptText)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("input closed")
	}
	return strings.TrimSpace(in.Text()), nil
}

// choose prints the prompt and resolves the answer against the candidates:
// a number selects by position, anything else is taken verbatim (the model
// may have offered no options at all).
func choose(in *bufio.Scanner, out io.Writer, promptText string, candidates []string) (string, error) {
	answer, err := ask(in, out, promptText)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(candidates) {
		return candidates[n-1], nil
	}
	return answer, nil
}

func domainNames(options []types.DomainOption) []string {
	names := make([]string, len(options))
	for i, opt := range options {
		names[i] = opt.Name
	}
	return names
}

func findingTexts(options []types.FrameworkOption) []string {
	texts := make([]string, len(options))
	for i, opt := range options {
		texts[i] = opt.Title + ": " + opt.Description
	}
	return texts
}

func questionTexts(options []types.Question) []string {
	texts := make([]string, len(options))
	for i, q := range options {
		texts[i] = q.Text
	}
	return texts
}
