// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding is returned when a key is not valid base32.
var ErrInvalidEncoding = errors.New("invalid base32 encoding")

// ErrInvalidChecksum is returned when the CRC-16 checksum does not match.
var ErrInvalidChecksum = errors.New("invalid checksum")

// ErrInvalidKeyLength is returned when the decoded key has the wrong size.
var ErrInvalidKeyLength = errors.New("invalid key length")

// ErrInvalidPrefix is returned when the prefix byte is not a known role or seed marker.
var ErrInvalidPrefix = errors.New("invalid prefix byte")

// ErrInvalidRole is returned when a role name or value is not recognized.
var ErrInvalidRole = errors.New("invalid role")

// ErrRoleMismatch is returned when a key decodes to a role other than the expected ones.
var ErrRoleMismatch = errors.New("unexpected key role")

// ErrNoPrivateKey is returned when an operation needs the seed of a public-only identity.
var ErrNoPrivateKey = errors.New("no private key available")

// ErrCannotSign is returned when signing with a key whose role is reserved for encryption.
var ErrCannotSign = errors.New("key role cannot sign")

// KeyDecodeError wraps an error with the "invalid key" prefix.
func KeyDecodeError(err error) error {
	return fmt.Errorf("invalid key: %w", err)
}
