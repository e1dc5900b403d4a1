// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package wasm

import (
	_ "crypto/sha256"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// Embed returns a copy of the module with the token stored in a custom
// section called name, placed right after the preamble. Existing custom
// sections with the same name are removed. Every other section keeps its
// payload and relative order.
func Embed(module []byte, name string, token string) ([]byte, error) {
	sections, err := Sections(module)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(module)+len(name)+len(token)+2*maxVarUint32Len+1)
	out = append(out, module[:PreambleSize]...)
	out = NewCustomSection(name, []byte(token)).appendTo(out)
	for _, sec := range sections {
		if sec.IsCustom() && sec.Name == name {
			continue
		}
		out = sec.appendTo(out)
	}
	return out, nil
}

// Extract returns the content of the first custom section called name.
// Sections after the match are not parsed.
func Extract(module []byte, name string) (string, error) {
	s, err := newScanner(module)
	if err != nil {
		return "", err
	}

	for {
		sec, ok, err := s.next()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrSectionNotFound, name)
		}
		if sec.IsCustom() && sec.Name == name {
			return string(sec.Content()), nil
		}
	}
}

// Strip returns a copy of the module without the custom sections called name.
func Strip(module []byte, name string) ([]byte, error) {
	sections, err := Sections(module)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(module))
	out = append(out, module[:PreambleSize]...)
	for _, sec := range sections {
		if sec.IsCustom() && sec.Name == name {
			continue
		}
		out = sec.appendTo(out)
	}
	return out, nil
}

// DigestExcluding computes the SHA-256 digest of the module as it would
// be with the custom sections called name removed. Section sizes are
// hashed in their minimal encoding, so the digest does not change when
// a section is embedded or replaced.
func DigestExcluding(module []byte, name string) (digest.Digest, error) {
	sections, err := Sections(module)
	if err != nil {
		return "", err
	}

	digester := digest.SHA256.Digester()
	h := digester.Hash()
	h.Write(module[:PreambleSize])

	var frame []byte
	for _, sec := range sections {
		if sec.IsCustom() && sec.Name == name {
			continue
		}
		frame = sec.appendTo(frame[:0])
		h.Write(frame)
	}
	return digester.Digest(), nil
}

// HashExcluding returns the lowercase hex SHA-256 of the module
// without the custom sections called name.
func HashExcluding(module []byte, name string) (string, error) {
	d, err := DigestExcluding(module, name)
	if err != nil {
		return "", err
	}
	return d.Encoded(), nil
}
