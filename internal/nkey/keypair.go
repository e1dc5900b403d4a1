// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"slices"
)

// KeyPair is an immutable role-tagged Ed25519 identity.
// A KeyPair built from a public key holds no private material
// and can only verify signatures.
type KeyPair struct {
	role Role
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// CreatePair generates a new identity for the given role
// from the process-wide cryptographically secure source.
func CreatePair(role Role) (*KeyPair, error) {
	return CreatePairWithRand(role, rand.Reader)
}

// CreatePairWithRand generates a new identity reading the seed from r.
func CreatePairWithRand(role Role, r io.Reader) (*KeyPair, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, byte(role))
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	return FromRawSeed(role, seed)
}

// FromRawSeed builds an identity from a raw 32-byte Ed25519 seed.
func FromRawSeed(role Role, seed []byte) (*KeyPair, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, byte(role))
	}
	if len(seed) != ed25519.SeedSize {
		return nil, KeyDecodeError(ErrInvalidKeyLength)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{
		role: role,
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
	}, nil
}

// FromSeed rebuilds an identity from its encoded seed.
func FromSeed(seed string) (*KeyPair, error) {
	role, raw, err := DecodeSeed(seed)
	if err != nil {
		return nil, err
	}
	return FromRawSeed(role, raw)
}

// FromPublicKey builds a verify-only identity from an encoded public key.
// When roles are given, a key of any other role is rejected with ErrRoleMismatch.
func FromPublicKey(publicKey string, roles ...Role) (*KeyPair, error) {
	role, raw, err := DecodePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !slices.Contains(roles, role) {
		return nil, KeyDecodeError(fmt.Errorf("%w: got %s, expected one of %v", ErrRoleMismatch, role, roles))
	}
	return &KeyPair{
		role: role,
		pub:  ed25519.PublicKey(bytes.Clone(raw)),
	}, nil
}

// Role returns the role the identity is tagged with.
func (kp *KeyPair) Role() Role {
	return kp.role
}

// PublicKey returns the encoded public key.
func (kp *KeyPair) PublicKey() string {
	return encodePublic(kp.role, kp.pub)
}

// RawPublicKey returns a copy of the Ed25519 public key.
func (kp *KeyPair) RawPublicKey() ed25519.PublicKey {
	return bytes.Clone(kp.pub)
}

// HasPrivateKey reports whether the identity can sign.
func (kp *KeyPair) HasPrivateKey() bool {
	return len(kp.priv) == ed25519.PrivateKeySize
}

// Seed returns the encoded seed.
func (kp *KeyPair) Seed() (string, error) {
	if !kp.HasPrivateKey() {
		return "", ErrNoPrivateKey
	}
	return encodeSeed(kp.role, kp.priv.Seed()), nil
}

// PrivateKey returns a copy of the Ed25519 private key.
func (kp *KeyPair) PrivateKey() (ed25519.PrivateKey, error) {
	if !kp.HasPrivateKey() {
		return nil, ErrNoPrivateKey
	}
	return bytes.Clone(kp.priv), nil
}

// PublicOnly returns a verify-only copy of the identity.
func (kp *KeyPair) PublicOnly() *KeyPair {
	return &KeyPair{role: kp.role, pub: bytes.Clone(kp.pub)}
}

// Sign returns the Ed25519 signature of data.
func (kp *KeyPair) Sign(data []byte) ([]byte, error) {
	if !kp.HasPrivateKey() {
		return nil, ErrNoPrivateKey
	}
	if kp.role == RoleCurve {
		return nil, ErrCannotSign
	}
	return ed25519.Sign(kp.priv, data), nil
}

// Verify reports whether sig is a valid signature of data.
// Malformed signatures are reported as invalid.
func (kp *KeyPair) Verify(data []byte, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize || len(kp.pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(kp.pub, data, sig)
}

// Equal reports whether both identities have the same role and public key.
func (kp *KeyPair) Equal(other *KeyPair) bool {
	if kp == nil || other == nil {
		return kp == other
	}
	return kp.role == other.role && bytes.Equal(kp.pub, other.pub)
}

// String returns the encoded public key.
func (kp *KeyPair) String() string {
	return kp.PublicKey()
}
