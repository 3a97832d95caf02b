// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research forwards finalized research questions to an external
// research provider. Providers are a closed enumeration; adding one means
// extending the enum, not registering a plugin, so the error and retry
// contract stays exhaustive. Provider responses are already structured and
// are returned unmodified; no extraction applies here.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/hypothesis-engine/internal/apperr"
	"github.com/pdiddy/hypothesis-engine/internal/httputil"
	"github.com/pdiddy/hypothesis-engine/internal/retry"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Provider identifies one of the two supported research APIs.
type Provider string

const (
	ProviderPerplexity Provider = "perplexity"
	ProviderElicit     Provider = "elicit"
)

// Provider endpoints. Package-level vars for test substitution.
var (
	perplexityAPIURL = "https://api.perplexity.ai/research"
	elicitAPIURL     = "https://api.elicit.org/v1/search"
)

// Request carries one dispatch of questions to a provider.
type Request struct {
	Questions []string
	Provider  Provider
	SessionID string
}

// payload is the JSON body sent to both providers.
type payload struct {
	Queries   []string `json:"queries"`
	SessionID string   `json:"sessionId"`
}

// Dispatcher sends question sets to the configured research providers
// through the retry layer.
type Dispatcher struct {
	Config types.ResearchConfig
	Policy retry.Policy
	Client *http.Client
}

// Dispatch validates the request and POSTs the question set to the
// provider, returning the provider's raw JSON payload unmodified. Both
// validation failures are local and precede any network action.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (json.RawMessage, error) {
	if len(req.Questions) == 0 {
		return nil, apperr.Validation("At least one research question is required")
	}

	endpoint, key, err := d.providerConfig(req.Provider)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload{Queries: req.Questions, SessionID: req.SessionID})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	return retry.Do(ctx, d.Policy, func(ctx context.Context) (json.RawMessage, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+key)
		if d.Config.UserAgent != "" {
			httpReq.Header.Set("User-Agent", d.Config.UserAgent)
		}

		respBody, err := httputil.Do(d.Client, httpReq)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(respBody), nil
	})
}

// providerConfig resolves the endpoint and API key for the provider.
func (d *Dispatcher) providerConfig(p Provider) (endpoint, key string, err error) {
	switch p {
	case ProviderPerplexity:
		return perplexityAPIURL, d.Config.PerplexityAPIKey, nil
	case ProviderElicit:
		return elicitAPIURL, d.Config.ElicitAPIKey, nil
	default:
		return "", "", apperr.Validation(fmt.Sprintf("valid API provider is required (got %q)", string(p)))
	}
}
