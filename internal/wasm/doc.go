// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package wasm reads and rewrites the section framing of WebAssembly
// binary modules to carry a signed capability token in a custom section.
//
// Only the framing is parsed: the 8 byte preamble, then a list of
// sections made of an id byte, a LEB128 payload size and the payload.
// Custom sections (id 0) start their payload with a LEB128 name length
// and the name. Section contents are never interpreted.
package wasm
