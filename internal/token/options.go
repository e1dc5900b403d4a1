// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package token

import (
	"time"
)

// signOptions holds the internal configuration for the Sign function.
type signOptions struct {
	now     func() time.Time
	tokenID string
}

// SignOption configures a Sign operation.
type SignOption func(*signOptions)

// SignOpt contains options for the Sign function.
var SignOpt signOptionBuilder

// signOptionBuilder is the internal builder for SignOption functions.
type signOptionBuilder struct{}

// WithIssuedAt stamps the issued at claim with a fixed time.
func (signOptionBuilder) WithIssuedAt(t time.Time) SignOption {
	return func(opts *signOptions) {
		opts.now = func() time.Time { return t }
	}
}

// WithTokenID sets the token ID (jti) instead of generating a UUID.
func (signOptionBuilder) WithTokenID(id string) SignOption {
	return func(opts *signOptions) {
		opts.tokenID = id
	}
}

func newSignOptions(opts ...SignOption) *signOptions {
	o := &signOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
