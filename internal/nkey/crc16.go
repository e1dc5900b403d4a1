// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

// crc16Table holds the CRC-16/XMODEM lookup table (polynomial 0x1021).
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// crc16 returns the CRC-16/XMODEM checksum of data.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc<<8 ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}

// validCRC16 reports whether the little-endian checksum matches data.
func validCRC16(data []byte, expected uint16) bool {
	return crc16(data) == expected
}
