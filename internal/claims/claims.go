// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package claims

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	mapset "github.com/deckarep/golang-set/v2"
)

// Claims is the set of assertions a capability token makes about a module:
// who issued it, which module it describes, which capabilities the module
// may use and during which window the assertions hold.
// RFC7519: https://datatracker.ietf.org/doc/rfc7519
type Claims struct {
	// Issuer is the encoded public key of the signing account or operator
	// (RFC 7519 ISS claim).
	// +required
	Issuer string

	// Subject is the encoded public key of the module identity
	// (RFC 7519 SUB claim).
	// +required
	Subject string

	// Name is the human-readable name of the module.
	// +optional
	Name string

	// Version is the semantic version of the module.
	// +optional
	Version string

	// Revision increases monotonically for each release of a module name.
	// +optional
	Revision int64

	// ModuleHash is the hex digest of the module excluding the claims section.
	// +optional
	ModuleHash string

	// Capabilities is the set of capability namespaces the module may use.
	// +optional
	Capabilities []string

	// Tags is a set of free-form labels.
	// +optional
	Tags []string

	// Provider is true when the module provides capabilities rather than consuming them.
	// +optional
	Provider bool

	// IssuedAt is the signing time in Unix seconds
	// (RFC 7519 IAT claim).
	// +required
	IssuedAt int64

	// NotBefore is the Unix time before which the claims are not valid;
	// zero means no lower bound (RFC 7519 NBF claim).
	// +optional
	NotBefore int64

	// Expires is the Unix time after which the claims are expired;
	// zero means no upper bound (RFC 7519 EXP claim).
	// +optional
	Expires int64

	// ID is the unique token identifier (RFC 7519 JTI claim).
	// +optional
	ID string

	// Extensions holds claims this package does not know about,
	// kept verbatim so they survive a decode and encode cycle.
	// +optional
	Extensions map[string]json.RawMessage
}

// New returns claims for the given issuer and subject with the
// capability and tag sets normalized.
func New(issuer, subject string, capabilities, tags []string) *Claims {
	return &Claims{
		Issuer:       issuer,
		Subject:      subject,
		Capabilities: normalizeSet(capabilities),
		Tags:         normalizeSet(tags),
	}
}

// NewWithDates returns claims bounded by the given Unix times,
// where zero leaves a bound open.
func NewWithDates(issuer, subject string, capabilities, tags []string, notBefore, expires int64) *Claims {
	c := New(issuer, subject, capabilities, tags)
	c.NotBefore = notBefore
	c.Expires = expires
	return c
}

// Clone returns a deep copy of the claims.
func (c *Claims) Clone() *Claims {
	out := *c
	out.Capabilities = slices.Clone(c.Capabilities)
	out.Tags = slices.Clone(c.Tags)
	if c.Extensions != nil {
		out.Extensions = make(map[string]json.RawMessage, len(c.Extensions))
		for k, v := range c.Extensions {
			out.Extensions[k] = bytes.Clone(v)
		}
	}
	return &out
}

// Validate checks the constraints that must hold before the claims are signed.
func (c *Claims) Validate() error {
	if c.Issuer == "" {
		return ConstraintError(ErrMissingIssuer)
	}
	if c.Subject == "" {
		return ConstraintError(ErrMissingSubject)
	}
	if c.IssuedAt < 0 || c.NotBefore < 0 || c.Expires < 0 {
		return ConstraintError(ErrNegativeTimestamp)
	}
	if c.NotBefore > 0 && c.Expires > 0 && c.NotBefore > c.Expires {
		return ConstraintError(ErrNotBeforeAfterExpiry)
	}
	if c.Revision < 0 {
		return ConstraintError(ErrInvalidRevision)
	}
	if c.Version != "" {
		if _, err := semver.NewVersion(c.Version); err != nil {
			return ConstraintError(ErrInvalidVersion)
		}
	}
	return nil
}

// HasCapability checks if the claims grant the specified capability.
func (c *Claims) HasCapability(capability string) bool {
	return slices.Contains(c.Capabilities, capability)
}

// HasTag checks if the claims carry the specified tag.
func (c *Claims) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// IssuedAtTime returns the issued at claim as time.
func (c *Claims) IssuedAtTime() time.Time {
	return time.Unix(c.IssuedAt, 0).UTC()
}

// Equal reports whether both claims carry the same assertions.
// Capabilities and tags are compared as sets.
func (c *Claims) Equal(other *Claims) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Issuer != other.Issuer ||
		c.Subject != other.Subject ||
		c.Name != other.Name ||
		c.Version != other.Version ||
		c.Revision != other.Revision ||
		c.ModuleHash != other.ModuleHash ||
		c.Provider != other.Provider ||
		c.IssuedAt != other.IssuedAt ||
		c.NotBefore != other.NotBefore ||
		c.Expires != other.Expires ||
		c.ID != other.ID {
		return false
	}
	if !sameSet(c.Capabilities, other.Capabilities) || !sameSet(c.Tags, other.Tags) {
		return false
	}
	return maps.EqualFunc(c.Extensions, other.Extensions, func(a, b json.RawMessage) bool {
		return bytes.Equal(compactJSON(a), compactJSON(b))
	})
}

// String returns the canonical JSON representation of the claims.
func (c *Claims) String() string {
	data, err := Encode(c)
	if err != nil {
		return "invalid claims"
	}
	return string(data)
}

// normalizeSet returns the distinct values sorted ascending,
// or nil when there are none.
func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := mapset.NewThreadUnsafeSet(values...)
	out := set.ToSlice()
	slices.Sort(out)
	return out
}

func sameSet(a, b []string) bool {
	return mapset.NewThreadUnsafeSet(a...).Equal(mapset.NewThreadUnsafeSet(b...))
}

func compactJSON(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
