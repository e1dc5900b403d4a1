// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package claims

import (
	"errors"
	"fmt"
)

// ErrFormat is returned when the claims payload is not a valid JSON object.
var ErrFormat = errors.New("malformed claims")

// ErrMissingIssuer is returned when the issuer (iss) claim is empty or absent.
var ErrMissingIssuer = errors.New("issuer (iss) cannot be empty")

// ErrMissingSubject is returned when the subject (sub) claim is empty or absent.
var ErrMissingSubject = errors.New("subject (sub) cannot be empty")

// ErrMissingIssuedAt is returned when the issued at (iat) claim is absent.
var ErrMissingIssuedAt = errors.New("issued at (iat) is required")

// ErrNotBeforeAfterExpiry is returned when not before (nbf) is later than expiry (exp).
var ErrNotBeforeAfterExpiry = errors.New("not before (nbf) cannot be later than expiry (exp)")

// ErrNegativeTimestamp is returned when a time claim is negative.
var ErrNegativeTimestamp = errors.New("time claims cannot be negative")

// ErrInvalidVersion is returned when the version (ver) claim is not a semantic version.
var ErrInvalidVersion = errors.New("version (ver) must be a semantic version")

// ErrInvalidRevision is returned when the revision (rev) claim is negative.
var ErrInvalidRevision = errors.New("revision (rev) cannot be negative")

// FormatError wraps an error with the "invalid claims format" prefix.
func FormatError(err error) error {
	return fmt.Errorf("invalid claims format: %w", err)
}

// ConstraintError wraps an error with the "invalid claims" prefix.
func ConstraintError(err error) error {
	return fmt.Errorf("invalid claims: %w", err)
}
