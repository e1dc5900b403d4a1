// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package verify checks a parsed capability token and aggregates the
// outcome of every check into a Report. Validation never fails on an
// invalid or expired token: denying a capability is left to the caller.
// All checks run offline against the token, the validation time and
// the optional caller constraints.
package verify
