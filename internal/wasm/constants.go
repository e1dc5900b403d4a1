// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package wasm

const (
	// ClaimsSectionName is the name of the custom section holding the token.
	ClaimsSectionName = "jwt"

	// Version is the only supported binary format version.
	Version uint32 = 1

	// PreambleSize is the size of the magic number plus the version.
	PreambleSize = 8

	// CustomSectionID is the section id of custom sections.
	CustomSectionID byte = 0

	// maxVarUint32Len is the maximum length of a LEB128 encoded u32.
	maxVarUint32Len = 5
)

// Magic is the "\0asm" magic number that starts every module.
var Magic = [4]byte{0x00, 0x61, 0x73, 0x6d}

var sectionKinds = map[byte]string{
	0:  "custom",
	1:  "type",
	2:  "import",
	3:  "function",
	4:  "table",
	5:  "memory",
	6:  "global",
	7:  "export",
	8:  "start",
	9:  "element",
	10: "code",
	11: "data",
	12: "datacount",
	13: "tag",
}

// Preamble returns the magic number followed by the supported version.
func Preamble() []byte {
	return []byte{Magic[0], Magic[1], Magic[2], Magic[3], byte(Version), 0, 0, 0}
}
