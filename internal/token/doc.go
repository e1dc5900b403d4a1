// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

// Package token builds and parses capability tokens.
//
// A token is the compact JWS serialization of a claims set:
// base64url(header) "." base64url(claims) "." base64url(signature),
// where the header is {"alg":"EdDSA","type":"jwt"} and the signature
// is the Ed25519 signature over the first two segments. The verifying
// key is recovered from the issuer claim, so a token can be checked
// without a separate key distribution channel.
package token
