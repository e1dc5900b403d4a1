// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package verify

import (
	"fmt"
	"time"
)

// Report is the aggregate result of validating a token.
// Optional checks that were not requested are nil.
type Report struct {
	// SignatureValid is true when the signature verifies against the issuer key.
	SignatureValid bool `json:"signatureValid"`

	// Expired is true when the token has an expiry in the past.
	Expired bool `json:"expired"`

	// NotYetValid is true when the token has a not before time in the future.
	NotYetValid bool `json:"notYetValid"`

	// HashMatches reports whether the module hash claim matches the expected hash.
	HashMatches *bool `json:"hashMatches,omitempty"`

	// IssuerMatches reports whether the issuer claim is one of the expected issuers.
	IssuerMatches *bool `json:"issuerMatches,omitempty"`

	// VersionMatches reports whether the version claim satisfies the version constraint.
	VersionMatches *bool `json:"versionMatches,omitempty"`

	// ExpiresAt is the expiry time, zero when the token never expires.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`

	// NotBefore is the start of the validity window, zero when unbounded.
	NotBefore time.Time `json:"notBefore,omitzero"`
}

// CanUse reports whether every check passed.
func (r *Report) CanUse() bool {
	return r.SignatureValid &&
		!r.Expired &&
		!r.NotYetValid &&
		!isFalse(r.HashMatches) &&
		!isFalse(r.IssuerMatches) &&
		!isFalse(r.VersionMatches)
}

// Problems lists every failed check, empty when the token can be used.
func (r *Report) Problems() []string {
	var problems []string
	if !r.SignatureValid {
		problems = append(problems, "signature is not valid")
	}
	if r.Expired {
		problems = append(problems, fmt.Sprintf("token expired at %s", r.ExpiresAt.Format(time.RFC3339)))
	}
	if r.NotYetValid {
		problems = append(problems, fmt.Sprintf("token is not valid before %s", r.NotBefore.Format(time.RFC3339)))
	}
	if isFalse(r.HashMatches) {
		problems = append(problems, "module hash does not match")
	}
	if isFalse(r.IssuerMatches) {
		problems = append(problems, "issuer is not trusted")
	}
	if isFalse(r.VersionMatches) {
		problems = append(problems, "version does not satisfy the constraint")
	}
	return problems
}

// String returns a one line summary of the report.
func (r *Report) String() string {
	if r.CanUse() {
		return "valid"
	}
	return fmt.Sprintf("invalid: %v", r.Problems())
}

func isFalse(b *bool) bool {
	return b != nil && !*b
}
