// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"errors"
)

// ErrModuleKeyRequired is returned when signing without a module key.
var ErrModuleKeyRequired = errors.New("module key is required")

// ErrModuleKeyRole is returned when the subject key is not a module key.
var ErrModuleKeyRole = errors.New("subject key must be a module key")

// ErrNegativeDays is returned when a validity offset in days is negative.
var ErrNegativeDays = errors.New("days cannot be negative")

// ErrEmptyModule is returned when a module source yields no data.
var ErrEmptyModule = errors.New("module is empty")
