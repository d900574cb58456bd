package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Response body reads are capped; provider records are small JSON documents.
const maxBodyBytes = 1 << 20

// GetJSON performs one GET against a provider endpoint and decodes the body
// into v. Non-200 statuses are classified through FromStatus and transport
// errors through ClassifyTransport, so every error out of here is either a
// *Failure or a context signal.
func GetJSON(ctx context.Context, client *http.Client, provider, url, userAgent string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Permanent(provider, CodeBadRequest, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return ClassifyTransport(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FromStatus(provider, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ClassifyTransport(provider, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return MalformedPayload(provider, "response is not valid JSON", err)
	}
	return nil
}

// Probe reports whether a GET on the given URL answers with anything below
// 500. Used by adapter health checks; failures are never retried.
func Probe(ctx context.Context, client *http.Client, url, userAgent string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return resp.StatusCode < 500
}
