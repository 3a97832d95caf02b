// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hypothesis-engine/internal/apperr"
	"github.com/pdiddy/hypothesis-engine/internal/retry"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

func testDispatcher(client *http.Client) *Dispatcher {
	return &Dispatcher{
		Config: types.ResearchConfig{
			PerplexityAPIKey: "pk-test",
			ElicitAPIKey:     "ek-test",
		},
		Policy: retry.Policy{MaxRetries: 2, Delay: time.Millisecond},
		Client: client,
	}
}

func swapEndpoint(t *testing.T, target *string, url string) {
	t.Helper()
	old := *target
	*target = url
	t.Cleanup(func() { *target = old })
}

func TestDispatch_PerplexityRequestShape(t *testing.T) {
	var captured payload
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"results":["r1"]}`)
	}))
	defer ts.Close()
	swapEndpoint(t, &perplexityAPIURL, ts.URL)

	d := testDispatcher(ts.Client())
	resp, err := d.Dispatch(context.Background(), Request{
		Questions: []string{"Q one", "Q two"},
		Provider:  ProviderPerplexity,
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"results":["r1"]}`, string(resp))
	assert.Equal(t, []string{"Q one", "Q two"}, captured.Queries)
	assert.Equal(t, "sess-1", captured.SessionID)
	assert.Equal(t, "Bearer pk-test", auth)
}

func TestDispatch_ElicitUsesItsOwnKey(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()
	swapEndpoint(t, &elicitAPIURL, ts.URL)

	d := testDispatcher(ts.Client())
	_, err := d.Dispatch(context.Background(), Request{
		Questions: []string{"Q"},
		Provider:  ProviderElicit,
		SessionID: "sess-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer ek-test", auth)
}

func TestDispatch_EmptyQuestionsRejectedLocally(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()
	swapEndpoint(t, &perplexityAPIURL, ts.URL)

	d := testDispatcher(ts.Client())
	_, err := d.Dispatch(context.Background(), Request{Provider: ProviderPerplexity, SessionID: "s"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInputValidation, apperr.Classify(err).Kind)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestDispatch_UnknownProviderRejectedLocally(t *testing.T) {
	d := testDispatcher(http.DefaultClient)
	_, err := d.Dispatch(context.Background(), Request{
		Questions: []string{"Q"},
		Provider:  Provider("scholarly"),
		SessionID: "s",
	})
	require.Error(t, err)
	e := apperr.Classify(err)
	assert.Equal(t, apperr.KindInputValidation, e.Kind)
	assert.Contains(t, e.Detail, "scholarly")
}

func TestDispatch_RetriesServerErrorThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer ts.Close()
	swapEndpoint(t, &perplexityAPIURL, ts.URL)

	d := testDispatcher(ts.Client())
	resp, err := d.Dispatch(context.Background(), Request{
		Questions: []string{"Q"},
		Provider:  ProviderPerplexity,
		SessionID: "s",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDispatch_AuthFailureDoesNotRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()
	swapEndpoint(t, &elicitAPIURL, ts.URL)

	d := testDispatcher(ts.Client())
	_, err := d.Dispatch(context.Background(), Request{
		Questions: []string{"Q"},
		Provider:  ProviderElicit,
		SessionID: "s",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.Classify(err).Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDispatch_PayloadReturnedUnmodified(t *testing.T) {
	const raw = `{"nested":{"deep":[1,2,3]},"extra":"untouched"}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, raw)
	}))
	defer ts.Close()
	swapEndpoint(t, &perplexityAPIURL, ts.URL)

	d := testDispatcher(ts.Client())
	resp, err := d.Dispatch(context.Background(), Request{
		Questions: []string{"Q"},
		Provider:  ProviderPerplexity,
		SessionID: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, raw, string(resp))
}
