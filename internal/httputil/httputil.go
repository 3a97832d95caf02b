// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across external call sites.
package httputil

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed response body is retained for
// error reporting.
const maxErrorBody = 4 << 10

// StatusError is returned by Do when the remote answered with a non-2xx
// status. It preserves the status code so callers can classify the failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("remote returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Do executes the request and returns the response body on any 2xx status.
// A non-2xx status is converted to a *StatusError with the body (truncated)
// attached; transport failures pass through unchanged from the client.
// The response body is always drained and closed.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
