// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package claims

import (
	"encoding/json"
	"fmt"
)

// JSON keys of the claims payload.
const (
	KeyIssuer       = "iss"
	KeySubject      = "sub"
	KeyName         = "name"
	KeyVersion      = "ver"
	KeyRevision     = "rev"
	KeyModuleHash   = "hash"
	KeyCapabilities = "caps"
	KeyTags         = "tags"
	KeyProvider     = "provider"
	KeyIssuedAt     = "iat"
	KeyNotBefore    = "nbf"
	KeyExpires      = "exp"
	KeyID           = "jti"
)

var knownKeys = map[string]struct{}{
	KeyIssuer: {}, KeySubject: {}, KeyName: {}, KeyVersion: {}, KeyRevision: {},
	KeyModuleHash: {}, KeyCapabilities: {}, KeyTags: {}, KeyProvider: {},
	KeyIssuedAt: {}, KeyNotBefore: {}, KeyExpires: {}, KeyID: {},
}

// Encode returns the canonical JSON form of the claims: a compact object
// with keys sorted, set fields sorted and deduplicated, and zero-valued
// optional fields omitted. Logically identical claims always encode
// to identical bytes.
func Encode(c *Claims) ([]byte, error) {
	if c == nil {
		return nil, FormatError(ErrFormat)
	}

	obj := make(map[string]json.RawMessage, len(knownKeys)+len(c.Extensions))
	for k, v := range c.Extensions {
		if _, known := knownKeys[k]; known {
			continue
		}
		compact := compactJSON(v)
		if !json.Valid(compact) {
			return nil, FormatError(fmt.Errorf("extension %q: %w", k, ErrFormat))
		}
		obj[k] = compact
	}

	set := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return FormatError(fmt.Errorf("%s: %w", key, err))
		}
		obj[key] = data
		return nil
	}

	fields := []struct {
		key  string
		val  any
		emit bool
	}{
		{KeyIssuer, c.Issuer, true},
		{KeySubject, c.Subject, true},
		{KeyIssuedAt, c.IssuedAt, true},
		{KeyName, c.Name, c.Name != ""},
		{KeyVersion, c.Version, c.Version != ""},
		{KeyRevision, c.Revision, c.Revision != 0},
		{KeyModuleHash, c.ModuleHash, c.ModuleHash != ""},
		{KeyCapabilities, normalizeSet(c.Capabilities), len(c.Capabilities) > 0},
		{KeyTags, normalizeSet(c.Tags), len(c.Tags) > 0},
		{KeyProvider, c.Provider, c.Provider},
		{KeyNotBefore, c.NotBefore, c.NotBefore != 0},
		{KeyExpires, c.Expires, c.Expires != 0},
		{KeyID, c.ID, c.ID != ""},
	}
	for _, f := range fields {
		if !f.emit {
			continue
		}
		if err := set(f.key, f.val); err != nil {
			return nil, err
		}
	}

	// encoding/json writes map keys in sorted order.
	return json.Marshal(obj)
}

// Decode parses the claims from their JSON form. Unknown keys are kept
// in Extensions. The issuer, subject and issued at claims are required.
func Decode(data []byte) (*Claims, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, FormatError(fmt.Errorf("%w: %w", ErrFormat, err))
	}
	if obj == nil {
		return nil, FormatError(ErrFormat)
	}

	c := &Claims{}
	get := func(key string, dst any) (bool, error) {
		raw, ok := obj[key]
		if !ok || string(raw) == "null" {
			return false, nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return false, FormatError(fmt.Errorf("%s: %w", key, err))
		}
		return true, nil
	}

	targets := []struct {
		key string
		dst any
	}{
		{KeyIssuer, &c.Issuer},
		{KeySubject, &c.Subject},
		{KeyName, &c.Name},
		{KeyVersion, &c.Version},
		{KeyRevision, &c.Revision},
		{KeyModuleHash, &c.ModuleHash},
		{KeyCapabilities, &c.Capabilities},
		{KeyTags, &c.Tags},
		{KeyProvider, &c.Provider},
		{KeyNotBefore, &c.NotBefore},
		{KeyExpires, &c.Expires},
		{KeyID, &c.ID},
	}
	for _, t := range targets {
		if _, err := get(t.key, t.dst); err != nil {
			return nil, err
		}
	}

	hasIAT, err := get(KeyIssuedAt, &c.IssuedAt)
	if err != nil {
		return nil, err
	}

	switch {
	case c.Issuer == "":
		return nil, FormatError(ErrMissingIssuer)
	case c.Subject == "":
		return nil, FormatError(ErrMissingSubject)
	case !hasIAT:
		return nil, FormatError(ErrMissingIssuedAt)
	}

	c.Capabilities = normalizeSet(c.Capabilities)
	c.Tags = normalizeSet(c.Tags)

	for k, v := range obj {
		if _, known := knownKeys[k]; known {
			continue
		}
		if c.Extensions == nil {
			c.Extensions = make(map[string]json.RawMessage)
		}
		c.Extensions[k] = v
	}

	return c, nil
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (c *Claims) MarshalJSON() ([]byte, error) {
	return Encode(c)
}

// UnmarshalJSON implements json.Unmarshaler using the strict decoding.
func (c *Claims) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
