// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hypothesis-engine/internal/apperr"
	"github.com/pdiddy/hypothesis-engine/internal/httputil"
	"github.com/pdiddy/hypothesis-engine/internal/retry"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// --- mock backends ---

type mockBackend struct {
	response string
	err      error
	calls    int

	lastSystem string
	lastUser   string
}

func (m *mockBackend) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// failNTimesBackend fails the first N calls, then succeeds.
type failNTimesBackend struct {
	failures int
	calls    int
	failWith error
	response string
}

func (f *failNTimesBackend) Complete(context.Context, string, string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.failWith
	}
	return f.response, nil
}

func testPrompts() types.StagePrompts {
	return types.StagePrompts{
		Stage1: "Stage one for [CONCEPT].",
		Stage2: "Stage two for {{CONCEPT}} in {{DOMAIN}}.",
		Stage3: "Stage three for {{CONCEPT}} in {{DOMAIN}} given {{FINDINGS}}.",
	}
}

func testOrchestrator(b ModelBackend) *Orchestrator {
	return NewOrchestrator(b, testPrompts(), retry.Policy{MaxRetries: 2, Delay: time.Millisecond})
}

// --- Advance ---

func TestAdvance_Stage1Success(t *testing.T) {
	backend := &mockBackend{response: "# Top Domains for X\n## 1. Domain: Ecology\n## 2. Domain: Economics\nWhich domain should we explore further?"}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	result, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: "swarm robotics"})
	require.NoError(t, err)

	domains, ok := result.(types.DomainSelection)
	require.True(t, ok)
	require.Len(t, domains.Options, 2)
	assert.Equal(t, "Ecology", domains.Options[0].Name)

	assert.Equal(t, 1, sess.Stage)
	assert.Equal(t, "swarm robotics", sess.Concept)
	assert.Equal(t, "Stage one for swarm robotics.", backend.lastSystem)
	assert.Equal(t, `Please analyze the concept: "swarm robotics"`, backend.lastUser)
}

func TestAdvance_Stage2RequiresDomainBeforeAnyCall(t *testing.T) {
	backend := &mockBackend{response: "irrelevant"}
	o := testOrchestrator(backend)
	sess := &types.Session{ID: "s", Stage: 1, Concept: "swarm robotics"}

	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 2, Concept: "swarm robotics"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInputValidation, apperr.Classify(err).Kind)
	assert.Zero(t, backend.calls)
	assert.Equal(t, 1, sess.Stage)
}

func TestAdvance_Stage3RequiresFinding(t *testing.T) {
	backend := &mockBackend{}
	o := testOrchestrator(backend)
	sess := &types.Session{ID: "s", Stage: 2, Concept: "c", Domain: "d"}

	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 3, Concept: "c", Domain: "d"})
	require.Error(t, err)
	assert.Zero(t, backend.calls)
}

func TestAdvance_StageNotReachable(t *testing.T) {
	backend := &mockBackend{}
	o := testOrchestrator(backend)
	sess := types.NewSession() // stage 0

	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 2, Concept: "c", Domain: "d"})
	require.Error(t, err)
	e := apperr.Classify(err)
	assert.Equal(t, apperr.KindInputValidation, e.Kind)
	assert.Contains(t, e.Detail, "not reachable")
	assert.Zero(t, backend.calls)
}

func TestAdvance_SameStageCanBeRerun(t *testing.T) {
	backend := &mockBackend{response: "no structure here"}
	o := testOrchestrator(backend)
	sess := &types.Session{ID: "s", Stage: 1, Concept: "c"}

	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Stage)
}

func TestAdvance_WordCountOverflow(t *testing.T) {
	backend := &mockBackend{}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	concept := strings.Repeat("word ", 13) // 13 words
	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: concept})
	require.Error(t, err)
	e := apperr.Classify(err)
	assert.Equal(t, apperr.KindInputValidation, e.Kind)
	assert.Contains(t, e.Detail, "13")
	assert.Zero(t, backend.calls)
}

func TestAdvance_TwelveWordConceptPasses(t *testing.T) {
	backend := &mockBackend{response: "text"}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	concept := strings.TrimSpace(strings.Repeat("word ", 12))
	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: concept})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestAdvance_RetriesServerErrorThenSucceeds(t *testing.T) {
	backend := &failNTimesBackend{
		failures: 2,
		failWith: &httputil.StatusError{StatusCode: 500},
		response: "# Top Domains\n## 1. Domain: Ecology",
	}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	result, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, backend.calls)
	assert.Len(t, result.(types.DomainSelection).Options, 1)
}

func TestAdvance_AuthenticationFailureDoesNotRetryOrAdvance(t *testing.T) {
	backend := &mockBackend{err: &httputil.StatusError{StatusCode: 401}}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: "c"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.Classify(err).Kind)
	assert.Equal(t, 1, backend.calls)
	assert.Zero(t, sess.Stage)
	assert.Empty(t, sess.Concept)
}

func TestAdvance_UnstructuredOutputIsEmptySuccess(t *testing.T) {
	backend := &mockBackend{response: "prose with no markers at all"}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	result, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: "c"})
	require.NoError(t, err)

	domains := result.(types.DomainSelection)
	assert.Empty(t, domains.Options)
	assert.Equal(t, "prose with no markers at all", domains.Content)
	assert.Equal(t, 1, sess.Stage)
}

func TestAdvance_FullThreeStageRun(t *testing.T) {
	backend := &mockBackend{}
	o := testOrchestrator(backend)
	sess := types.NewSession()

	backend.response = "# Top Domains\n## 1. Domain: Ecology"
	_, err := o.Advance(context.Background(), sess, StageRequest{Stage: 1, Concept: "collective memory"})
	require.NoError(t, err)

	backend.response = "# 6: Brightest Bulbs\n1. **Alpha:** blend one"
	_, err = o.Advance(context.Background(), sess, StageRequest{Stage: 2, Concept: "collective memory", Domain: "Ecology"})
	require.NoError(t, err)
	assert.Equal(t, "Ecology", sess.Domain)

	backend.response = "<research_questions>1. How?</research_questions>"
	result, err := o.Advance(context.Background(), sess, StageRequest{
		Stage: 3, Concept: "collective memory", Domain: "Ecology", Finding: "Alpha blend",
	})
	require.NoError(t, err)

	assert.Equal(t, types.StageComplete, sess.Stage)
	assert.Equal(t, "Alpha blend", sess.Finding)
	questions := result.(types.ResearchQuestions)
	require.Len(t, questions.Options, 1)
	assert.Equal(t, "How?", questions.Options[0].Text)
}

// --- ValidateConcept ---

func TestValidateConcept(t *testing.T) {
	tests := []struct {
		name    string
		concept string
		wantErr string
	}{
		{"valid", "three word concept", ""},
		{"exactly twelve words", "a b c d e f g h i j k l", ""},
		{"thirteen words", "a b c d e f g h i j k l m", "current: 13 words"},
		{"empty", "", "Concept cannot be empty"},
		{"whitespace only", "  \t ", "Concept cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConcept(tt.concept)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, apperr.Classify(err).Detail, tt.wantErr)
		})
	}
}
