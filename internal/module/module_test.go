// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
	"github.com/controlplaneio-fluxcd/modclaims/internal/verify"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

func testModule() []byte {
	return wasm.Assemble(
		wasm.NewSection(1, []byte{0x01, 0x60, 0x00, 0x00}),
		wasm.NewSection(3, []byte{0x01, 0x00}),
		wasm.NewSection(10, []byte{0x01, 0x02, 0x00, 0x0b}),
	)
}

func testKeys(t *testing.T) (*nkey.KeyPair, *nkey.KeyPair) {
	t.Helper()
	g := NewWithT(t)

	account, err := nkey.CreatePair(nkey.RoleAccount)
	g.Expect(err).ToNot(HaveOccurred())
	module, err := nkey.CreatePair(nkey.RoleModule)
	g.Expect(err).ToNot(HaveOccurred())
	return account, module
}

func TestIssueInspect_EndToEnd(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	account, module := testKeys(t)

	c := claims.New(account.PublicKey(), module.PublicKey(), []string{"ns:one"}, nil)
	signed, tok, err := Issue(ctx, wasm.Preamble(), c, account)
	g.Expect(err).ToNot(HaveOccurred())

	raw, err := wasm.Extract(signed, wasm.ClaimsSectionName)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(raw).To(Equal(tok.Raw))

	parsed, err := token.Parse(raw)
	g.Expect(err).ToNot(HaveOccurred())

	for _, now := range []time.Time{time.Unix(0, 0), time.Now(), time.Now().AddDate(50, 0, 0)} {
		report := verify.Validate(parsed, now)
		g.Expect(report.CanUse()).To(BeTrue())
	}

	inspection, err := Inspect(ctx, signed, time.Now())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Report.CanUse()).To(BeTrue())
	g.Expect(*inspection.Report.HashMatches).To(BeTrue())
	g.Expect(inspection.ModuleHash).To(Equal(tok.Claims.ModuleHash))
	g.Expect(inspection.Token.Claims.HasCapability("ns:one")).To(BeTrue())
}

func TestIssue_HashBinding(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	account, module := testKeys(t)
	original := testModule()

	hash, err := wasm.HashExcluding(original, wasm.ClaimsSectionName)
	g.Expect(err).ToNot(HaveOccurred())

	c := claims.New(account.PublicKey(), module.PublicKey(), []string{"ns:one"}, []string{"t"})
	c.ModuleHash = "stale"
	signed, tok, err := Issue(ctx, original, c, account)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(tok.Claims.ModuleHash).To(Equal(hash))
	g.Expect(c.ModuleHash).To(Equal("stale"))

	signedHash, err := wasm.HashExcluding(signed, wasm.ClaimsSectionName)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(signedHash).To(Equal(tok.Claims.ModuleHash))

	// re-signing an already signed module keeps the hash
	resigned, tok2, err := Issue(ctx, signed, c, account)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(tok2.Claims.ModuleHash).To(Equal(hash))

	inspection, err := Inspect(ctx, resigned, time.Now())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Token.Raw).To(Equal(tok2.Raw))
}

func TestInspect_ModifiedCode(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	account, module := testKeys(t)

	signed, _, err := Issue(ctx, testModule(), claims.New(account.PublicKey(), module.PublicKey(), nil, nil), account)
	g.Expect(err).ToNot(HaveOccurred())

	// replace the function body end opcode with nop
	tampered := bytes.Clone(signed)
	g.Expect(tampered[len(tampered)-1]).To(Equal(byte(0x0b)))
	tampered[len(tampered)-1] = 0x01

	inspection, err := Inspect(ctx, tampered, time.Now())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Report.SignatureValid).To(BeTrue())
	g.Expect(*inspection.Report.HashMatches).To(BeFalse())
	g.Expect(inspection.Report.CanUse()).To(BeFalse())
}

func TestInspect_Tampered(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	account, module := testKeys(t)

	signed, tok, err := Issue(ctx, wasm.Preamble(), claims.New(account.PublicKey(), module.PublicKey(), []string{"ns:one"}, nil), account)
	g.Expect(err).ToNot(HaveOccurred())

	segments := strings.Split(tok.Raw, ".")
	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	g.Expect(err).ToNot(HaveOccurred())
	forgedClaims, err := claims.Decode(payload)
	g.Expect(err).ToNot(HaveOccurred())
	forgedClaims.Capabilities = []string{"ns:two"}
	payload, err = claims.Encode(forgedClaims)
	g.Expect(err).ToNot(HaveOccurred())
	forged := segments[0] + "." + base64.RawURLEncoding.EncodeToString(payload) + "." + segments[2]

	reembedded, err := wasm.Embed(signed, wasm.ClaimsSectionName, forged)
	g.Expect(err).ToNot(HaveOccurred())

	inspection, err := Inspect(ctx, reembedded, time.Now())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Report.SignatureValid).To(BeFalse())
	g.Expect(inspection.Report.CanUse()).To(BeFalse())
}

func TestInspect_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no token section", func(t *testing.T) {
		g := NewWithT(t)
		_, err := Inspect(ctx, testModule(), time.Now())
		g.Expect(errors.Is(err, wasm.ErrSectionNotFound)).To(BeTrue())
	})

	t.Run("section is not a token", func(t *testing.T) {
		g := NewWithT(t)
		module, err := wasm.Embed(testModule(), wasm.ClaimsSectionName, "garbage")
		g.Expect(err).ToNot(HaveOccurred())

		_, err = Inspect(ctx, module, time.Now())
		g.Expect(errors.Is(err, token.ErrFormat)).To(BeTrue())
	})

	t.Run("not a module", func(t *testing.T) {
		g := NewWithT(t)
		_, err := Inspect(ctx, []byte("not wasm"), time.Now())
		g.Expect(errors.Is(err, wasm.ErrBadMagic)).To(BeTrue())
	})
}

func TestSignModule(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	account, module := testKeys(t)
	now := time.Unix(1700000000, 0)

	signed, tok, err := SignModule(ctx, testModule(), module, account, SignRequest{
		Name:          "echo",
		Version:       "0.3.1",
		Revision:      7,
		Capabilities:  []string{claims.CapHTTPServer, claims.CapLogging},
		Tags:          []string{"demo"},
		ExpiresInDays: 30,
		NotBeforeDays: 1,
		Now:           now,
	})
	g.Expect(err).ToNot(HaveOccurred())

	c := tok.Claims
	g.Expect(c.Issuer).To(Equal(account.PublicKey()))
	g.Expect(c.Subject).To(Equal(module.PublicKey()))
	g.Expect(c.IssuedAt).To(Equal(now.Unix()))
	g.Expect(c.NotBefore).To(Equal(now.Unix() + 86400))
	g.Expect(c.Expires).To(Equal(now.Unix() + 30*86400))
	g.Expect(c.Name).To(Equal("echo"))
	g.Expect(c.Revision).To(Equal(int64(7)))
	g.Expect(c.Capabilities).To(Equal([]string{claims.CapHTTPServer, claims.CapLogging}))

	inspection, err := Inspect(ctx, signed, now)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Report.NotYetValid).To(BeTrue())

	inspection, err = Inspect(ctx, signed, now.Add(48*time.Hour))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Report.CanUse()).To(BeTrue())

	inspection, err = Inspect(ctx, signed, now.AddDate(0, 0, 31))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(inspection.Report.Expired).To(BeTrue())
}

func TestSignModule_Errors(t *testing.T) {
	ctx := context.Background()
	account, module := testKeys(t)

	tests := []struct {
		name      string
		moduleKey *nkey.KeyPair
		issuer    *nkey.KeyPair
		req       SignRequest
		wantErr   error
	}{
		{name: "no module key", moduleKey: nil, issuer: account, wantErr: ErrModuleKeyRequired},
		{name: "account as module key", moduleKey: account, issuer: account, wantErr: ErrModuleKeyRole},
		{name: "no issuer", moduleKey: module, issuer: nil, wantErr: token.ErrSignerRequired},
		{name: "module as issuer", moduleKey: module, issuer: module, wantErr: token.ErrIssuerRole},
		{name: "public only issuer", moduleKey: module, issuer: account.PublicOnly(), wantErr: nkey.ErrNoPrivateKey},
		{name: "negative days", moduleKey: module, issuer: account, req: SignRequest{ExpiresInDays: -1}, wantErr: ErrNegativeDays},
		{name: "bad version", moduleKey: module, issuer: account, req: SignRequest{Version: "latest"}, wantErr: claims.ErrInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, _, err := SignModule(ctx, testModule(), tt.moduleKey, tt.issuer, tt.req)
			g.Expect(errors.Is(err, tt.wantErr)).To(BeTrue(), "%v", err)
		})
	}
}
