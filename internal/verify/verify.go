// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package verify

import (
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
)

// Validate runs every check over the token and reports the outcome.
// No check short-circuits another. An issuer claim that does not decode
// to an account or operator key yields an invalid signature.
func Validate(tok *token.Token, now time.Time, opts ...VerifyOption) Report {
	o := &verifyOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var report Report
	if tok == nil || tok.Claims == nil {
		return report
	}
	c := tok.Claims

	report.SignatureValid = tok.Verify() == nil

	unix := now.Unix()
	if c.Expires != 0 {
		report.ExpiresAt = time.Unix(c.Expires, 0).UTC()
		report.Expired = unix > c.Expires
	}
	if c.NotBefore != 0 {
		report.NotBefore = time.Unix(c.NotBefore, 0).UTC()
		report.NotYetValid = unix < c.NotBefore
	}

	if o.expectedHash != "" {
		matches := c.ModuleHash != "" && strings.EqualFold(c.ModuleHash, o.expectedHash)
		report.HashMatches = &matches
	}

	if len(o.expectedIssuers) > 0 {
		matches := slices.Contains(o.expectedIssuers, c.Issuer)
		report.IssuerMatches = &matches
	}

	if o.versionConstraint != nil {
		matches := false
		if v, err := semver.NewVersion(c.Version); err == nil {
			matches = o.versionConstraint.Check(v)
		}
		report.VersionMatches = &matches
	}

	return report
}
