// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package nkey implements role-tagged Ed25519 identities with a
// human-readable, checksum-protected textual encoding.
//
// An identity is encoded as base32 (RFC 4648, no padding) over
// a role prefix byte, the raw key bytes and a CRC-16 checksum:
//
//   - public keys: <role><32-byte public key><crc16>, 56 characters
//   - seeds: <seed prefix|role><32-byte seed><crc16>, 58 characters
//
// The first character of a public key names its role (A for accounts,
// M for modules, O for operators) and seeds always start with S followed
// by the role character. Decoding verifies the checksum and the role byte,
// so a key of one role is never silently accepted as another.
package nkey
