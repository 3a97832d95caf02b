// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow drives the three-stage analytical session: domain
// discovery, conceptual blending, and hypothesis generation. The
// orchestrator validates stage preconditions, renders the stage prompts,
// calls the model through the retry layer, and extracts the typed result.
// Session state advances only after a successful result; a validation
// failure is terminal and never reaches the remote call.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/hypothesis-engine/internal/apperr"
	"github.com/pdiddy/hypothesis-engine/internal/extract"
	"github.com/pdiddy/hypothesis-engine/internal/prompt"
	"github.com/pdiddy/hypothesis-engine/internal/retry"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// maxConceptWords caps the concept length; words are maximal runs of
// non-whitespace.
const maxConceptWords = 12

// ModelBackend abstracts the text-completion API so tests can supply a
// mock. Implementations must be safe to retry with the same prompts.
type ModelBackend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// StageRequest carries the inputs for one stage advance.
type StageRequest struct {
	Stage   int
	Concept string
	Domain  string
	Finding string
}

// Orchestrator sequences one session through the workflow stages.
type Orchestrator struct {
	backend ModelBackend
	prompts *prompt.Builder
	policy  retry.Policy
}

// NewOrchestrator returns an orchestrator over the given backend, prompt
// templates, and retry policy.
func NewOrchestrator(backend ModelBackend, prompts types.StagePrompts, policy retry.Policy) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		prompts: prompt.NewBuilder(prompts),
		policy:  policy,
	}
}

// Advance runs the requested stage for the session: validate preconditions,
// build prompts, call the model with retry, extract the typed result. The
// session is mutated only after the result is in hand, so a failed call
// leaves it exactly as it was.
func (o *Orchestrator) Advance(ctx context.Context, sess *types.Session, req StageRequest) (types.StageResult, error) {
	if err := validate(sess, req); err != nil {
		return nil, err
	}

	system, user, err := o.prompts.Build(req.Stage, prompt.Params{
		Concept: req.Concept,
		Domain:  req.Domain,
		Finding: req.Finding,
	})
	if err != nil {
		return nil, err
	}

	raw, err := retry.Do(ctx, o.policy, func(ctx context.Context) (string, error) {
		return o.backend.Complete(ctx, system, user)
	})
	if err != nil {
		return nil, err
	}

	result, err := extract.Extract(req.Stage, raw)
	if err != nil {
		return nil, err
	}

	sess.Stage = req.Stage
	sess.Concept = req.Concept
	if req.Domain != "" {
		sess.Domain = req.Domain
	}
	if req.Finding != "" {
		sess.Finding = req.Finding
	}
	return result, nil
}

// validate enforces the stage-request invariant: a request for stage N must
// carry every input required for stages 1..N, and N must be reachable from
// the session's current stage.
func validate(sess *types.Session, req StageRequest) error {
	if req.Stage < types.StageDomains || req.Stage > types.StageQuestions {
		return apperr.Validation(fmt.Sprintf("invalid stage %d", req.Stage))
	}
	if err := ValidateConcept(req.Concept); err != nil {
		return err
	}
	if req.Stage >= types.StageBlending && req.Domain == "" {
		return apperr.Validation("Domain is required for stage 2 and above")
	}
	if req.Stage >= types.StageQuestions && req.Finding == "" {
		return apperr.Validation("Finding is required for stage 3")
	}
	if sess.Stage < req.Stage-1 {
		return apperr.Validation(fmt.Sprintf("stage %d is not reachable from stage %d", req.Stage, sess.Stage))
	}
	return nil
}

// ValidateConcept checks that the concept is present and within the word
// cap. The violation message reports the actual count.
func ValidateConcept(concept string) error {
	if strings.TrimSpace(concept) == "" {
		return apperr.Validation("Concept cannot be empty")
	}
	if n := len(strings.Fields(concept)); n > maxConceptWords {
		return apperr.Validation(fmt.Sprintf("Concept must be %d words or less (current: %d words)", maxConceptWords, n))
	}
	return nil
}
