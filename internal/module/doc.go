// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package module issues and inspects capability tokens embedded in
// WebAssembly modules, and loads modules from files, stdin, HTTPS
// endpoints and OCI registries.
package module
