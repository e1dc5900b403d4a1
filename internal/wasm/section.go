// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package wasm

import (
	"bytes"
	"fmt"
)

// Section is the framing of one module section.
type Section struct {
	// ID is the section id, zero for custom sections.
	ID byte `json:"id"`

	// Name is the custom section name, empty for other sections.
	Name string `json:"name,omitempty"`

	// Offset is the position of the id byte in the module.
	Offset int `json:"offset"`

	// Size is the payload size in bytes.
	Size int `json:"size"`

	payload []byte
	content []byte
}

// Kind returns the section name from the binary format, or "unknown".
func (s Section) Kind() string {
	if kind, ok := sectionKinds[s.ID]; ok {
		return kind
	}
	return "unknown"
}

// IsCustom reports whether the section is a custom section.
func (s Section) IsCustom() bool {
	return s.ID == CustomSectionID
}

// Content returns the custom section data after the name,
// or the whole payload for other sections.
func (s Section) Content() []byte {
	return s.content
}

// appendTo writes the section with a minimal size encoding.
func (s Section) appendTo(dst []byte) []byte {
	dst = append(dst, s.ID)
	dst = appendVarUint32(dst, uint32(len(s.payload)))
	return append(dst, s.payload...)
}

// checkPreamble validates the magic number and version.
func checkPreamble(buf []byte) error {
	n := min(len(buf), len(Magic))
	if !bytes.Equal(buf[:n], Magic[:n]) {
		return ErrBadMagic
	}
	if len(buf) < PreambleSize {
		return ErrTruncated
	}
	if v := uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24; v != Version {
		return fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	return nil
}

// scanner walks the sections of a module one at a time,
// so a lookup can stop at the first match.
type scanner struct {
	buf []byte
	off int
}

func newScanner(buf []byte) (*scanner, error) {
	if err := checkPreamble(buf); err != nil {
		return nil, ContainerError(err)
	}
	return &scanner{buf: buf, off: PreambleSize}, nil
}

// next returns the next section, or false at the end of the module.
func (s *scanner) next() (Section, bool, error) {
	if s.off >= len(s.buf) {
		return Section{}, false, nil
	}

	start := s.off
	id := s.buf[start]
	size, n, err := readVarUint32(s.buf[start+1:])
	if err != nil {
		return Section{}, false, ContainerError(fmt.Errorf("section at offset %d: %w", start, err))
	}

	payloadStart := start + 1 + n
	payloadEnd := payloadStart + int(size)
	if payloadEnd > len(s.buf) {
		return Section{}, false, ContainerError(fmt.Errorf("%w: section at offset %d declares %d bytes, %d available",
			ErrMalformedSection, start, size, len(s.buf)-payloadStart))
	}

	sec := Section{
		ID:      id,
		Offset:  start,
		Size:    int(size),
		payload: s.buf[payloadStart:payloadEnd],
	}
	sec.content = sec.payload

	if sec.IsCustom() {
		nameLen, m, err := readVarUint32(sec.payload)
		if err != nil || m+int(nameLen) > len(sec.payload) {
			return Section{}, false, ContainerError(fmt.Errorf("%w: custom section name at offset %d",
				ErrMalformedSection, start))
		}
		sec.Name = string(sec.payload[m : m+int(nameLen)])
		sec.content = sec.payload[m+int(nameLen):]
	}

	s.off = payloadEnd
	return sec, true, nil
}

// Sections lists the framing of every section in order.
func Sections(buf []byte) ([]Section, error) {
	s, err := newScanner(buf)
	if err != nil {
		return nil, err
	}

	var sections []Section
	for {
		sec, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return sections, nil
		}
		sections = append(sections, sec)
	}
}

// NewCustomSection builds a custom section holding data under name.
func NewCustomSection(name string, data []byte) Section {
	payload := appendVarUint32(nil, uint32(len(name)))
	payload = append(payload, name...)
	payload = append(payload, data...)
	return Section{
		ID:      CustomSectionID,
		Name:    name,
		Size:    len(payload),
		payload: payload,
		content: payload[len(payload)-len(data):],
	}
}

// NewSection builds a non-custom section with the given id and payload.
func NewSection(id byte, payload []byte) Section {
	return Section{
		ID:      id,
		Size:    len(payload),
		payload: payload,
		content: payload,
	}
}

// Assemble builds a module from a preamble and the given sections.
func Assemble(sections ...Section) []byte {
	out := Preamble()
	for _, sec := range sections {
		out = sec.appendTo(out)
	}
	return out
}
