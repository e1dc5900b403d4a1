// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/go-jose/go-jose/v4"
)

// KeySet represents a JWK Set of public identities.
// The key ID of every entry is the encoded public key,
// which lets verifiers recover the role of each key.
type KeySet struct {
	// Keys is a list of JSON Web Keys (JWKs) that make up the set.
	Keys []jose.JSONWebKey `json:"keys"`
}

// ToJWK returns the public half of the identity as an EdDSA signing JWK.
func (kp *KeyPair) ToJWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       kp.RawPublicKey(),
		KeyID:     kp.PublicKey(),
		Algorithm: string(jose.EdDSA),
		Use:       "sig",
	}
}

// NewKeySet creates a KeySet holding the public keys of the given identities.
func NewKeySet(pairs ...*KeyPair) (*KeySet, error) {
	ks := &KeySet{Keys: []jose.JSONWebKey{}}
	for _, kp := range pairs {
		if err := ks.Add(kp); err != nil {
			return nil, err
		}
	}
	return ks, nil
}

// Add appends the public key of kp to the set.
func (k *KeySet) Add(kp *KeyPair) error {
	if kp == nil {
		return fmt.Errorf("cannot add nil identity to key set")
	}
	if kp.Role() == RoleCurve {
		return fmt.Errorf("cannot add %s key %s to a signing key set", kp.Role(), kp.PublicKey())
	}

	kid := kp.PublicKey()
	for _, existing := range k.Keys {
		if existing.KeyID == kid {
			return fmt.Errorf("key with ID %s already exists in the set", kid)
		}
	}

	k.Keys = append(k.Keys, kp.ToJWK())
	return nil
}

// PublicKeys returns the encoded public keys in the set.
func (k *KeySet) PublicKeys() []string {
	keys := make([]string, 0, len(k.Keys))
	for _, key := range k.Keys {
		keys = append(keys, key.KeyID)
	}
	return keys
}

// Lookup returns the verify-only identity stored under the encoded public key.
func (k *KeySet) Lookup(publicKey string) (*KeyPair, error) {
	for _, key := range k.Keys {
		if key.KeyID != publicKey {
			continue
		}
		if key.Algorithm != string(jose.EdDSA) {
			return nil, fmt.Errorf("key with ID %s has unsupported algorithm %s, expected %s", publicKey, key.Algorithm, jose.EdDSA)
		}
		if key.Use != "sig" {
			return nil, fmt.Errorf("key with ID %s has unsupported use %s, expected 'sig'", publicKey, key.Use)
		}
		raw, ok := key.Key.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("key with ID %s is not an Ed25519 public key", publicKey)
		}

		kp, err := FromPublicKey(publicKey)
		if err != nil {
			return nil, err
		}
		if !kp.pub.Equal(raw) {
			return nil, fmt.Errorf("key with ID %s does not match its key material", publicKey)
		}
		return kp, nil
	}
	return nil, fmt.Errorf("no public key found with ID %s", publicKey)
}

// ToJSON converts the KeySet to a JSON byte slice.
func (k *KeySet) ToJSON() ([]byte, error) {
	return json.MarshalIndent(*k, "", "  ")
}

// KeySetFromJSON creates a KeySet from a JSON byte slice.
// Every key ID must be a valid encoded public key.
func KeySetFromJSON(data []byte) (*KeySet, error) {
	var ks KeySet
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key set: %w", err)
	}
	if len(ks.Keys) == 0 {
		return nil, fmt.Errorf("key set has no keys")
	}
	for _, key := range ks.Keys {
		if _, err := ks.Lookup(key.KeyID); err != nil {
			return nil, err
		}
	}
	return &ks, nil
}
