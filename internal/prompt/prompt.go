// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the stage-specific system and user prompts from
// externally supplied templates. Rendering is a pure function of the
// templates and parameters; templates are substituted case-sensitively and
// never validated for well-formedness.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pdiddy/hypothesis-engine/internal/apperr"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Placeholder markers recognized in the configured templates. Stage 1 uses
// the bracketed concept marker once; stages 2 and 3 substitute the braced
// markers at every occurrence.
const (
	conceptMarkerStage1 = "[CONCEPT]"
	conceptMarker       = "{{CONCEPT}}"
	domainMarker        = "{{DOMAIN}}"
	findingsMarker      = "{{FINDINGS}}"
)

// Params carries the session inputs substituted into the templates.
type Params struct {
	Concept string
	Domain  string
	Finding string
}

// Builder renders prompts for the three workflow stages.
type Builder struct {
	prompts types.StagePrompts
}

// NewBuilder returns a Builder over the configured stage templates.
func NewBuilder(prompts types.StagePrompts) *Builder {
	return &Builder{prompts: prompts}
}

// Build returns the system and user prompt for the given stage. A missing
// domain (stages 2 and 3) or finding (stage 3) is a local validation failure,
// surfaced before any remote call.
func (b *Builder) Build(stage int, p Params) (system, user string, err error) {
	switch stage {
	case types.StageDomains:
		system = strings.Replace(b.prompts.Stage1, conceptMarkerStage1, p.Concept, 1)
		user = fmt.Sprintf("Please analyze the concept: %q", p.Concept)

	case types.StageBlending:
		if p.Domain == "" {
			return "", "", apperr.Validation("Domain is required for stage 2")
		}
		system = strings.ReplaceAll(b.prompts.Stage2, conceptMarker, p.Concept)
		system = strings.ReplaceAll(system, domainMarker, p.Domain)
		user = fmt.Sprintf("Please analyze the relationship between %s and %s", p.Concept, p.Domain)

	case types.StageQuestions:
		if p.Domain == "" {
			return "", "", apperr.Validation("Domain is required for stage 3")
		}
		if p.Finding == "" {
			return "", "", apperr.Validation("Finding is required for stage 3")
		}
		system = strings.ReplaceAll(b.prompts.Stage3, conceptMarker, p.Concept)
		system = strings.ReplaceAll(system, domainMarker, p.Domain)
		system = strings.ReplaceAll(system, findingsMarker, p.Finding)
		user = "Please develop hypotheses and research questions based on the selected framework"

	default:
		return "", "", apperr.Validation(fmt.Sprintf("invalid stage %d", stage))
	}

	return system, user, nil
}
