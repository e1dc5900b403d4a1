// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

// ContentType represents the accepted content types of Fetch requests.
type ContentType string

const (
	// ContentTypeModule represents a WebAssembly binary module.
	ContentTypeModule ContentType = "application/wasm"

	// ContentTypeKeySet represents the JSON Web Key Set content type.
	// Suitable for fetching the public identities trusted as issuers.
	ContentTypeKeySet ContentType = "application/jwks"

	// ContentTypeToken represents a capability token in compact serialization.
	ContentTypeToken ContentType = "application/jwt"
)

// DefaultMaxSize is the default limit of a fetched response body.
const DefaultMaxSize = 100 << 20

// fetchOptions holds the internal configuration for the Fetch function.
type fetchOptions struct {
	retries            int
	allowLocalhost     bool
	userAgent          string
	insecureSkipVerify bool
	contentType        ContentType
	maxSize            int64
}

// FetchOption configures a Fetch operation.
type FetchOption func(*fetchOptions)

// FetchOpt contains options for the Fetch function.
var FetchOpt fetchOptionBuilder

// fetchOptionBuilder is the internal builder for FetchOption functions.
type fetchOptionBuilder struct{}

// WithContentType sets the expected content type of the response.
func (fetchOptionBuilder) WithContentType(contentType ContentType) FetchOption {
	return func(opts *fetchOptions) {
		opts.contentType = contentType
	}
}

// WithRetries sets the number of retries for HTTP requests.
func (fetchOptionBuilder) WithRetries(retries int) FetchOption {
	return func(opts *fetchOptions) {
		opts.retries = retries
	}
}

// WithLocalhost allows plain HTTP connections to localhost addresses.
func (fetchOptionBuilder) WithLocalhost(allow bool) FetchOption {
	return func(opts *fetchOptions) {
		opts.allowLocalhost = allow
	}
}

// WithUserAgent sets the User-Agent header for HTTP requests.
func (fetchOptionBuilder) WithUserAgent(userAgent string) FetchOption {
	return func(opts *fetchOptions) {
		opts.userAgent = userAgent
	}
}

// WithInsecureSkipVerify skips TLS certificate verification (for testing).
func (fetchOptionBuilder) WithInsecureSkipVerify(skip bool) FetchOption {
	return func(opts *fetchOptions) {
		opts.insecureSkipVerify = skip
	}
}

// WithMaxSize limits the size of the response body.
func (fetchOptionBuilder) WithMaxSize(size int64) FetchOption {
	return func(opts *fetchOptions) {
		opts.maxSize = size
	}
}

// Fetch performs an HTTP GET request to the specified URL.
// It enforces HTTPS unless connecting to localhost and validates
// the response body against the expected content type.
func Fetch(ctx context.Context, rawURL string, opts ...FetchOption) ([]byte, error) {
	// Configure default options.
	options := &fetchOptions{
		retries:        2,
		userAgent:      "modclaims/1.0",
		allowLocalhost: true,
		maxSize:        DefaultMaxSize,
	}

	// Apply user-provided options.
	for _, opt := range opts {
		opt(options)
	}

	// Parse and validate the URL.
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Check if the hostname is localhost or equivalent.
	isLocalhost := strings.EqualFold(parsedURL.Hostname(), "localhost") ||
		parsedURL.Hostname() == "127.0.0.1" ||
		parsedURL.Hostname() == "::1"

	// Enforce HTTPS unless connecting to localhost and allowed.
	if !strings.EqualFold(parsedURL.Scheme, "https") && (!isLocalhost || !options.allowLocalhost) {
		return nil, errors.New("HTTPS scheme is required")
	}

	// Set up the retryable HTTP client.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = options.retries
	retryClient.RetryWaitMin = 2 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil
	if options.insecureSkipVerify {
		retryClient.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", options.userAgent)

	// Set the Accept header based on the content type.
	switch options.contentType {
	case ContentTypeModule:
		req.Header.Set("Accept", fmt.Sprintf("%s, application/octet-stream", options.contentType))
	case ContentTypeKeySet:
		req.Header.Set("Accept", fmt.Sprintf("application/json, %s", options.contentType))
	case ContentTypeToken:
		req.Header.Set("Accept", fmt.Sprintf("application/jose, %s", options.contentType))
	}

	resp, err := retryClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed with status: %d", resp.StatusCode)
	}

	// Read at most one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, options.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > options.maxSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", options.maxSize)
	}

	if len(body) == 0 {
		return nil, errors.New("response body is empty")
	}

	// Basic response body validation based on accepted content type.
	switch options.contentType {
	case ContentTypeModule:
		if !bytes.HasPrefix(body, wasm.Magic[:]) {
			return nil, errors.New("invalid wasm module response")
		}
	case ContentTypeKeySet:
		if !json.Valid(body) {
			return nil, errors.New("invalid JWKS response")
		}
	case ContentTypeToken:
		if strings.Count(strings.TrimSpace(string(body)), ".") != 2 {
			return nil, errors.New("invalid JWT response")
		}
	}

	return body, nil
}

// FetchKeySet downloads a JWKS of public identities from the specified URL.
func FetchKeySet(ctx context.Context, rawURL string, opts ...FetchOption) (*nkey.KeySet, error) {
	opts = append(opts, FetchOpt.WithContentType(ContentTypeKeySet))
	data, err := Fetch(ctx, rawURL, opts...)
	if err != nil {
		return nil, err
	}
	return nkey.KeySetFromJSON(data)
}
