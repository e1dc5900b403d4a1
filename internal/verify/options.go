// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package verify

import (
	"github.com/Masterminds/semver/v3"
)

// verifyOptions holds the internal configuration for the Validate function.
type verifyOptions struct {
	expectedHash      string
	expectedIssuers   []string
	versionConstraint *semver.Constraints
}

// VerifyOption configures a Validate operation.
type VerifyOption func(*verifyOptions)

// VerifyOpt contains options for the Validate function.
var VerifyOpt verifyOptionBuilder

// verifyOptionBuilder is the internal builder for VerifyOption functions.
type verifyOptionBuilder struct{}

// WithExpectedHash compares the module hash claim with the given hex digest.
// An empty value skips the check.
func (verifyOptionBuilder) WithExpectedHash(hash string) VerifyOption {
	return func(opts *verifyOptions) {
		opts.expectedHash = hash
	}
}

// WithExpectedIssuer pins the issuer claim to one of the given encoded public keys.
// Calling it with no keys skips the check.
func (verifyOptionBuilder) WithExpectedIssuer(publicKeys ...string) VerifyOption {
	return func(opts *verifyOptions) {
		opts.expectedIssuers = append(opts.expectedIssuers, publicKeys...)
	}
}

// WithVersionConstraint checks the version claim against a semver constraint.
func (verifyOptionBuilder) WithVersionConstraint(constraint *semver.Constraints) VerifyOption {
	return func(opts *verifyOptions) {
		opts.versionConstraint = constraint
	}
}
