// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

// secondsPerDay converts day offsets to Unix seconds.
const secondsPerDay = 86400

// SignRequest holds the module metadata and validity window
// used by SignModule to build the claims.
type SignRequest struct {
	// Name is the human-readable module name.
	Name string

	// Version is the semantic version of the module.
	Version string

	// Revision is the release counter of the module.
	Revision int64

	// Capabilities lists the capability namespaces granted to the module.
	Capabilities []string

	// Tags lists free-form labels.
	Tags []string

	// Provider marks the module as a capability provider.
	Provider bool

	// ExpiresInDays sets the expiry relative to the signing time,
	// zero means the token never expires.
	ExpiresInDays int

	// NotBeforeDays delays the start of the validity window,
	// zero means the token is valid immediately.
	NotBeforeDays int

	// Now is the signing time, defaults to the current time.
	Now time.Time
}

// Issue signs the claims with the issuer key and embeds the token in the module.
// The module hash claim is always replaced with the hash of the given module.
func Issue(ctx context.Context, module []byte, c *claims.Claims, issuer *nkey.KeyPair, opts ...token.SignOption) ([]byte, *token.Token, error) {
	if c == nil {
		return nil, nil, token.SigningError(claims.ErrFormat)
	}
	log := logr.FromContextOrDiscard(ctx)

	hash, err := wasm.HashExcluding(module, wasm.ClaimsSectionName)
	if err != nil {
		return nil, nil, err
	}
	log.V(1).Info("computed module hash", "hash", hash)

	signed := c.Clone()
	signed.ModuleHash = hash

	tok, err := token.Sign(signed, issuer, opts...)
	if err != nil {
		return nil, nil, err
	}
	log.V(1).Info("signed token", "jti", tok.Claims.ID, "issuer", tok.Claims.Issuer, "subject", tok.Claims.Subject)

	out, err := wasm.Embed(module, wasm.ClaimsSectionName, tok.Raw)
	if err != nil {
		return nil, nil, err
	}
	log.V(1).Info("embedded token", "section", wasm.ClaimsSectionName, "size", len(out))

	return out, tok, nil
}

// SignModule builds the claims for the module key from the request,
// signs them with the issuer key and embeds the token in the module.
func SignModule(ctx context.Context, module []byte, moduleKey, issuer *nkey.KeyPair, req SignRequest, opts ...token.SignOption) ([]byte, *token.Token, error) {
	if moduleKey == nil {
		return nil, nil, ErrModuleKeyRequired
	}
	if moduleKey.Role() != nkey.RoleModule {
		return nil, nil, fmt.Errorf("%w: got %s", ErrModuleKeyRole, moduleKey.Role())
	}
	if issuer == nil {
		return nil, nil, token.SigningError(token.ErrSignerRequired)
	}
	if req.ExpiresInDays < 0 || req.NotBeforeDays < 0 {
		return nil, nil, ErrNegativeDays
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	c := claims.NewWithDates(
		issuer.PublicKey(),
		moduleKey.PublicKey(),
		req.Capabilities,
		req.Tags,
		daysFrom(now, req.NotBeforeDays),
		daysFrom(now, req.ExpiresInDays),
	)
	c.Name = req.Name
	c.Version = req.Version
	c.Revision = req.Revision
	c.Provider = req.Provider

	signOpts := append([]token.SignOption{token.SignOpt.WithIssuedAt(now)}, opts...)
	return Issue(ctx, module, c, issuer, signOpts...)
}

// daysFrom returns the Unix time days after now, or zero when days is zero.
func daysFrom(now time.Time, days int) int64 {
	if days == 0 {
		return 0
	}
	return now.Unix() + int64(days)*secondsPerDay
}
