// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

import (
	"fmt"
	"strings"
)

// Role tags what an identity is permitted to represent.
// The value is the prefix byte written in front of the encoded key,
// chosen so that the first base32 character spells the role.
type Role byte

const (
	// RoleAccount identifies a signing account (A).
	RoleAccount Role = 0 << 3

	// RoleCluster identifies a cluster (C).
	RoleCluster Role = 2 << 3

	// RoleModule identifies a binary module (M).
	RoleModule Role = 12 << 3

	// RoleServer identifies a server (N).
	RoleServer Role = 13 << 3

	// RoleOperator identifies an operator (O).
	RoleOperator Role = 14 << 3

	// RoleUser identifies a user (U).
	RoleUser Role = 20 << 3

	// RoleCurve identifies an encryption key (X).
	RoleCurve Role = 23 << 3
)

// prefixByteSeed marks an encoded seed (S).
const prefixByteSeed byte = 18 << 3

var roleNames = map[Role]string{
	RoleAccount:  "account",
	RoleCluster:  "cluster",
	RoleModule:   "module",
	RoleServer:   "server",
	RoleOperator: "operator",
	RoleUser:     "user",
	RoleCurve:    "curve",
}

// Roles returns all known roles in prefix byte order.
func Roles() []Role {
	return []Role{RoleAccount, RoleCluster, RoleModule, RoleServer, RoleOperator, RoleUser, RoleCurve}
}

// String returns the lowercase role name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", byte(r))
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// CanIssue reports whether keys of this role may sign claims for other identities.
func (r Role) CanIssue() bool {
	return r == RoleAccount || r == RoleOperator
}

// ParseRole returns the Role for the given name, ignoring case.
func ParseRole(name string) (Role, error) {
	for role, n := range roleNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return role, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, name)
}
