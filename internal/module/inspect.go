// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
	"github.com/controlplaneio-fluxcd/modclaims/internal/verify"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

// Inspection is the result of inspecting a signed module.
type Inspection struct {
	// Token is the parsed token found in the module.
	Token *token.Token

	// Report is the validation outcome, with the module hash
	// checked against the module itself.
	Report verify.Report

	// ModuleHash is the hash of the module without the token section.
	ModuleHash string
}

// Inspect extracts the token from the module and validates it at the given time.
// A module without a token fails with wasm.ErrSectionNotFound, a token that
// does not parse fails with a token format error. Failed checks are reported,
// not returned as errors.
func Inspect(ctx context.Context, module []byte, now time.Time, opts ...verify.VerifyOption) (*Inspection, error) {
	log := logr.FromContextOrDiscard(ctx)

	raw, err := wasm.Extract(module, wasm.ClaimsSectionName)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("found token section", "section", wasm.ClaimsSectionName, "size", len(raw))

	hash, err := wasm.HashExcluding(module, wasm.ClaimsSectionName)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("computed module hash", "hash", hash)

	tok, err := token.Parse(raw)
	if err != nil {
		return nil, err
	}

	verifyOpts := append([]verify.VerifyOption{verify.VerifyOpt.WithExpectedHash(hash)}, opts...)
	report := verify.Validate(tok, now, verifyOpts...)
	for _, problem := range report.Problems() {
		log.V(1).Info("check failed", "problem", problem, "subject", tok.Claims.Subject)
	}

	return &Inspection{
		Token:      tok,
		Report:     report,
		ModuleHash: hash,
	}, nil
}
