// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
)

// keyEncoding is the RFC 4648 base32 alphabet without padding.
var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const (
	// KeySize is the size in bytes of raw Ed25519 public keys and seeds.
	KeySize = 32

	// EncodedPublicKeyLength is the length of an encoded public key.
	EncodedPublicKeyLength = 56

	// EncodedSeedLength is the length of an encoded seed.
	EncodedSeedLength = 58

	checksumSize = 2
)

// encode returns the base32 text of prefix+payload followed by the checksum.
func encode(prefix []byte, payload []byte) string {
	raw := make([]byte, 0, len(prefix)+len(payload)+checksumSize)
	raw = append(raw, prefix...)
	raw = append(raw, payload...)
	raw = binary.LittleEndian.AppendUint16(raw, crc16(raw))
	return keyEncoding.EncodeToString(raw)
}

// decode returns the bytes of an encoded key with the checksum verified and stripped.
func decode(src string) ([]byte, error) {
	raw, err := keyEncoding.DecodeString(src)
	if err != nil {
		return nil, KeyDecodeError(fmt.Errorf("%w: %v", ErrInvalidEncoding, err))
	}
	if keyEncoding.EncodeToString(raw) != src {
		return nil, KeyDecodeError(fmt.Errorf("%w: non-canonical trailing bits", ErrInvalidEncoding))
	}
	if len(raw) < checksumSize+1 {
		return nil, KeyDecodeError(ErrInvalidKeyLength)
	}

	body := raw[:len(raw)-checksumSize]
	sum := binary.LittleEndian.Uint16(raw[len(raw)-checksumSize:])
	if !validCRC16(body, sum) {
		return nil, KeyDecodeError(ErrInvalidChecksum)
	}
	return body, nil
}

// encodePublic encodes a raw public key tagged with role.
func encodePublic(role Role, key []byte) string {
	return encode([]byte{byte(role)}, key)
}

// encodeSeed encodes a raw seed tagged with role.
// The seed marker and the role are packed in the first two bytes so the
// text starts with 'S' followed by the role character.
func encodeSeed(role Role, seed []byte) string {
	b1 := prefixByteSeed | byte(role)>>5
	b2 := (byte(role) & 31) << 3
	return encode([]byte{b1, b2}, seed)
}

// DecodePublicKey returns the role and raw public key of an encoded public key.
func DecodePublicKey(src string) (Role, []byte, error) {
	if len(src) != EncodedPublicKeyLength {
		return 0, nil, KeyDecodeError(fmt.Errorf("%w: public key must be %d characters, got %d",
			ErrInvalidKeyLength, EncodedPublicKeyLength, len(src)))
	}
	body, err := decode(src)
	if err != nil {
		return 0, nil, err
	}

	role := Role(body[0])
	if !role.Valid() {
		return 0, nil, KeyDecodeError(fmt.Errorf("%w: 0x%02x", ErrInvalidPrefix, body[0]))
	}
	if len(body[1:]) != KeySize {
		return 0, nil, KeyDecodeError(ErrInvalidKeyLength)
	}
	return role, body[1:], nil
}

// DecodeSeed returns the role and raw seed of an encoded seed.
func DecodeSeed(src string) (Role, []byte, error) {
	if len(src) != EncodedSeedLength {
		return 0, nil, KeyDecodeError(fmt.Errorf("%w: seed must be %d characters, got %d",
			ErrInvalidKeyLength, EncodedSeedLength, len(src)))
	}
	body, err := decode(src)
	if err != nil {
		return 0, nil, err
	}
	if len(body) != 2+KeySize {
		return 0, nil, KeyDecodeError(ErrInvalidKeyLength)
	}

	b1 := body[0] & 248
	if b1 != prefixByteSeed {
		return 0, nil, KeyDecodeError(fmt.Errorf("%w: not a seed", ErrInvalidPrefix))
	}
	role := Role((body[0]&7)<<5 | (body[1]&248)>>3)
	if !role.Valid() {
		return 0, nil, KeyDecodeError(fmt.Errorf("%w: 0x%02x", ErrInvalidPrefix, byte(role)))
	}
	return role, body[2:], nil
}

// IsValidPublicKey reports whether src decodes as a public key of one of the given roles.
// When no roles are given any known role is accepted.
func IsValidPublicKey(src string, roles ...Role) bool {
	_, err := FromPublicKey(src, roles...)
	return err == nil
}
