// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
	"github.com/controlplaneio-fluxcd/modclaims/internal/verify"
)

// maxTokenSize limits tokens read from stdin.
const maxTokenSize = 1 << 20

// LoadToken reads a compact token from a file, stdin ("-") or an HTTP(S) URL.
func LoadToken(ctx context.Context, source string, stdin io.Reader, opts ...FetchOption) (string, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case source == StdinSource:
		data, err = io.ReadAll(io.LimitReader(stdin, maxTokenSize))
		if err != nil {
			return "", fmt.Errorf("failed to read token from stdin: %w", err)
		}
	case strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "http://"):
		fetchOpts := append([]FetchOption{FetchOpt.WithContentType(ContentTypeToken)}, opts...)
		data, err = Fetch(ctx, source, fetchOpts...)
		if err != nil {
			return "", err
		}
		logr.FromContextOrDiscard(ctx).V(1).Info("fetched token", "url", source, "size", len(data))
	default:
		data, err = os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", fmt.Errorf("%w: %s", token.ErrFormat, source)
	}
	return raw, nil
}

// InspectToken parses and validates a token that is not embedded in a module.
// The module hash is only checked when an expected hash option is given.
func InspectToken(ctx context.Context, raw string, now time.Time, opts ...verify.VerifyOption) (*Inspection, error) {
	log := logr.FromContextOrDiscard(ctx)

	tok, err := token.Parse(raw)
	if err != nil {
		return nil, err
	}

	report := verify.Validate(tok, now, opts...)
	for _, problem := range report.Problems() {
		log.V(1).Info("check failed", "problem", problem, "subject", tok.Claims.Subject)
	}

	return &Inspection{
		Token:  tok,
		Report: report,
	}, nil
}
