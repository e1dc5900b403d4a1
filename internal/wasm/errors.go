// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package wasm

import (
	"errors"
	"fmt"
)

// ErrBadMagic is returned when the buffer does not start with the wasm magic number.
var ErrBadMagic = errors.New("bad magic number")

// ErrBadVersion is returned when the binary format version is not supported.
var ErrBadVersion = errors.New("unsupported binary version")

// ErrTruncated is returned when the buffer ends inside the preamble or a section header.
var ErrTruncated = errors.New("unexpected end of module")

// ErrMalformedSection is returned when a section size runs past the buffer
// or a custom section name does not fit its payload.
var ErrMalformedSection = errors.New("malformed section")

// ErrSectionNotFound is returned when no custom section has the requested name.
var ErrSectionNotFound = errors.New("section not found")

// ContainerError wraps an error with the "invalid module" prefix.
func ContainerError(err error) error {
	return fmt.Errorf("invalid module: %w", err)
}
