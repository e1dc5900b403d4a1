// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package token

import (
	"errors"
	"fmt"
)

// ErrFormat is returned when a token does not have three base64url segments.
var ErrFormat = errors.New("malformed token")

// ErrUnsupportedAlgorithm is returned when the header algorithm is not EdDSA.
var ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

// ErrUnsupportedType is returned when the header type is not jwt.
var ErrUnsupportedType = errors.New("unsupported token type")

// ErrIssuerMismatch is returned when the issuer claim does not name the signing key.
var ErrIssuerMismatch = errors.New("issuer (iss) does not match the signing key")

// ErrIssuerRole is returned when the signing key role cannot issue tokens.
var ErrIssuerRole = errors.New("signing key must be an account or operator key")

// ErrSignerRequired is returned when no signing key is provided.
var ErrSignerRequired = errors.New("signing key is required")

// ErrVerifySig is returned when a signature does not verify against the issuer key.
var ErrVerifySig = errors.New("failed to verify signature")

// FormatError wraps an error with the "invalid token format" prefix.
func FormatError(err error) error {
	return fmt.Errorf("invalid token format: %w", err)
}

// SigningError wraps an error with the "failed to sign token" prefix.
func SigningError(err error) error {
	return fmt.Errorf("failed to sign token: %w", err)
}
