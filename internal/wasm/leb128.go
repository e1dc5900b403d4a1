// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package wasm

import (
	"encoding/binary"
	"math"
)

// readVarUint32 decodes an unsigned LEB128 u32 at the start of buf
// and returns the value and the number of bytes read.
func readVarUint32(buf []byte) (uint32, int, error) {
	v, n := binary.Uvarint(buf)
	switch {
	case n == 0:
		return 0, 0, ErrTruncated
	case n < 0, n > maxVarUint32Len, v > math.MaxUint32:
		return 0, 0, ErrMalformedSection
	}
	return uint32(v), n, nil
}

// appendVarUint32 appends the minimal LEB128 encoding of v.
func appendVarUint32(dst []byte, v uint32) []byte {
	return binary.AppendUvarint(dst, uint64(v))
}
