package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/adapter/http/middleware"
)

// apiError is a non-2xx response decoded from the server's error body.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body.Error)
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	if e.Body.Field != "" {
		msg += " [field " + e.Body.Field + "]"
	}
	return msg
}

type apiClient struct {
	http *http.Client
	opts *options
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		http: &http.Client{Timeout: opts.timeout},
		opts: opts,
	}
}

// do sends body as JSON and decodes the response into dst when dst is non-nil.
// Mutating requests carry a fresh Idempotency-Key so a retried command is
// not applied twice.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	target := strings.TrimRight(c.opts.baseURL, "/") + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set(middleware.IdempotencyKeyHeader, ulid.Make().String())
	}

	switch {
	case c.opts.token != "":
		req.Header.Set("Authorization", "Bearer "+c.opts.token)
	case c.opts.employeeID != "":
		req.Header.Set(middleware.EmployeeIDHeader, c.opts.employeeID)
		req.Header.Set(middleware.EmployeeRoleHeader, c.opts.role)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(raw, &apiErr.Body) != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
