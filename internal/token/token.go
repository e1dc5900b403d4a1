// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
)

const (
	// TypeJWT is the only accepted value of the header type field.
	TypeJWT = "jwt"

	// AlgorithmEdDSA is the only accepted value of the header alg field.
	AlgorithmEdDSA = string(jose.EdDSA)

	headerType      = "type"
	headerAlgorithm = "alg"
)

// Header is the protected header of a capability token.
type Header struct {
	Type      string `json:"type"`
	Algorithm string `json:"alg"`
}

// Token is a parsed capability token. Parsing does not verify
// the signature, see Verify.
type Token struct {
	// Raw is the compact serialization the token was parsed from.
	Raw string

	// Header is the decoded protected header.
	Header Header

	// Claims is the decoded claims payload.
	Claims *claims.Claims

	// Signature is the decoded signature segment.
	Signature []byte

	// signingInput is header_b64 "." claims_b64 as found in Raw.
	signingInput string
}

// String returns the compact serialization of the token.
func (t *Token) String() string {
	return t.Raw
}

// SigningInput returns the exact bytes covered by the signature.
func (t *Token) SigningInput() []byte {
	return []byte(t.signingInput)
}

// Issuer recovers the issuer identity from the claims.
// Only account and operator keys are accepted as issuers.
func (t *Token) Issuer() (*nkey.KeyPair, error) {
	kp, err := nkey.FromPublicKey(t.Claims.Issuer, nkey.RoleAccount, nkey.RoleOperator)
	if err != nil {
		return nil, err
	}
	return kp, nil
}

// Verify checks the signature against the key named by the issuer claim.
func (t *Token) Verify() error {
	issuer, err := t.Issuer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifySig, err)
	}
	if !issuer.Verify(t.SigningInput(), t.Signature) {
		return ErrVerifySig
	}
	return nil
}

// Sign stamps the issued at and token ID claims on a copy of c,
// signs it with kp and returns the parsed token.
// The issuer claim must be the encoded public key of kp.
func Sign(c *claims.Claims, kp *nkey.KeyPair, opts ...SignOption) (*Token, error) {
	if c == nil {
		return nil, SigningError(claims.ErrFormat)
	}
	if kp == nil {
		return nil, SigningError(ErrSignerRequired)
	}
	if !kp.HasPrivateKey() {
		return nil, SigningError(nkey.ErrNoPrivateKey)
	}
	if !kp.Role().CanIssue() {
		return nil, SigningError(ErrIssuerRole)
	}
	if c.Issuer != kp.PublicKey() {
		return nil, SigningError(ErrIssuerMismatch)
	}

	o := newSignOptions(opts...)
	signed := c.Clone()
	signed.IssuedAt = o.now().Unix()
	signed.ID = o.tokenID
	if signed.ID == "" {
		id, err := uuid.NewV6()
		if err != nil {
			return nil, SigningError(err)
		}
		signed.ID = id.String()
	}

	if err := signed.Validate(); err != nil {
		return nil, err
	}

	payload, err := claims.Encode(signed)
	if err != nil {
		return nil, SigningError(err)
	}

	privateKey, err := kp.PrivateKey()
	if err != nil {
		return nil, SigningError(err)
	}

	signerOpts := jose.SignerOptions{}
	signerOpts.WithHeader(headerType, TypeJWT)

	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.EdDSA,
		Key:       privateKey,
	}, &signerOpts)
	if err != nil {
		return nil, SigningError(fmt.Errorf("failed to create signer: %w", err))
	}

	signedObject, err := signer.Sign(payload)
	if err != nil {
		return nil, SigningError(err)
	}

	raw, err := signedObject.CompactSerialize()
	if err != nil {
		return nil, SigningError(fmt.Errorf("failed to serialize signed token: %w", err))
	}

	return Parse(raw)
}

// Parse decodes the token structure without verifying the signature.
// Every segment must be canonical unpadded base64url and the header
// must hold exactly the alg and type fields.
func Parse(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, FormatError(fmt.Errorf("%w: expected 3 segments, got %d", ErrFormat, len(segments)))
	}

	headerJSON, err := decodeSegment("header", segments[0])
	if err != nil {
		return nil, err
	}
	header, err := parseHeader(headerJSON)
	if err != nil {
		return nil, err
	}
	if _, err := decodeSegment("claims", segments[1]); err != nil {
		return nil, err
	}
	if _, err := decodeSegment("signature", segments[2]); err != nil {
		return nil, err
	}

	jws, err := jose.ParseSigned(raw, []jose.SignatureAlgorithm{jose.EdDSA})
	if err != nil {
		return nil, FormatError(fmt.Errorf("%w: %w", ErrFormat, err))
	}
	if len(jws.Signatures) != 1 {
		return nil, FormatError(fmt.Errorf("%w: expected one signature", ErrFormat))
	}

	payload := jws.UnsafePayloadWithoutVerification()
	c, err := claims.Decode(payload)
	if err != nil {
		return nil, FormatError(fmt.Errorf("%w: %w", ErrFormat, err))
	}

	return &Token{
		Raw:          raw,
		Header:       header,
		Claims:       c,
		Signature:    jws.Signatures[0].Signature,
		signingInput: segments[0] + "." + segments[1],
	}, nil
}

// decodeSegment decodes a base64url segment and rejects any text
// that is not the canonical encoding of the decoded bytes.
func decodeSegment(name, segment string) ([]byte, error) {
	data, err := base64.RawURLEncoding.Strict().DecodeString(segment)
	if err != nil {
		return nil, FormatError(fmt.Errorf("%w: %s: %w", ErrFormat, name, err))
	}
	if base64.RawURLEncoding.EncodeToString(data) != segment {
		return nil, FormatError(fmt.Errorf("%w: %s: non-canonical encoding", ErrFormat, name))
	}
	return data, nil
}

// parseHeader decodes the protected header. Field names are matched
// exactly and fields other than alg and type are rejected.
func parseHeader(data []byte) (Header, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Header{}, FormatError(fmt.Errorf("%w: header: %w", ErrFormat, err))
	}
	for name := range fields {
		if name != headerAlgorithm && name != headerType {
			return Header{}, FormatError(fmt.Errorf("%w: unexpected header field %q", ErrFormat, name))
		}
	}

	var header Header
	if v, ok := fields[headerAlgorithm]; ok {
		if err := json.Unmarshal(v, &header.Algorithm); err != nil {
			return Header{}, FormatError(fmt.Errorf("%w: header alg: %w", ErrFormat, err))
		}
	}
	if v, ok := fields[headerType]; ok {
		if err := json.Unmarshal(v, &header.Type); err != nil {
			return Header{}, FormatError(fmt.Errorf("%w: header type: %w", ErrFormat, err))
		}
	}

	if header.Algorithm != AlgorithmEdDSA {
		return Header{}, FormatError(fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, header.Algorithm))
	}
	if header.Type != TypeJWT {
		return Header{}, FormatError(fmt.Errorf("%w: %q", ErrUnsupportedType, header.Type))
	}
	return header, nil
}

// DetachedSignature signs the canonical claims bytes without a header.
func DetachedSignature(c *claims.Claims, kp *nkey.KeyPair) ([]byte, error) {
	if kp == nil {
		return nil, SigningError(ErrSignerRequired)
	}
	payload, err := claims.Encode(c)
	if err != nil {
		return nil, SigningError(err)
	}
	sig, err := kp.Sign(payload)
	if err != nil {
		return nil, SigningError(err)
	}
	return sig, nil
}

// VerifyDetached checks a detached signature of c against the key
// named by its issuer claim.
func VerifyDetached(c *claims.Claims, sig []byte) error {
	if c == nil {
		return fmt.Errorf("%w: %w", ErrVerifySig, claims.ErrFormat)
	}
	issuer, err := nkey.FromPublicKey(c.Issuer, nkey.RoleAccount, nkey.RoleOperator)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifySig, err)
	}
	payload, err := claims.Encode(c)
	if err != nil {
		return err
	}
	if !issuer.Verify(payload, sig) {
		return ErrVerifySig
	}
	return nil
}
