// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

func TestFetch(t *testing.T) {
	t.Run("uses default options", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.UserAgent()).To(Equal("modclaims/1.0"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("test response"))
		}))
		defer server.Close()

		data, err := Fetch(context.TODO(), server.URL)

		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(string(data)).To(Equal("test response"))
	})

	t.Run("fetches module over TLS", func(t *testing.T) {
		g := NewWithT(t)
		module := testModule()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.Header.Get("Accept")).To(Equal("application/wasm, application/octet-stream"))
			g.Expect(r.UserAgent()).To(Equal("test-agent/1.0"))
			w.Header().Set("Content-Type", "application/wasm")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(module)
		}))
		defer server.Close()

		data, err := Fetch(
			context.TODO(),
			server.URL,
			FetchOpt.WithRetries(1),
			FetchOpt.WithUserAgent("test-agent/1.0"),
			FetchOpt.WithContentType(ContentTypeModule),
			FetchOpt.WithInsecureSkipVerify(true),
		)

		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(data).To(Equal(module))
	})

	t.Run("validates jwt", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.Header.Get("Accept")).To(Equal("application/jose, application/jwt"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("HEADER.PAYLOAD\n"))
		}))
		defer server.Close()

		_, err := Fetch(context.TODO(), server.URL, FetchOpt.WithContentType(ContentTypeToken))
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("invalid JWT response"))
	})

	t.Run("validates jwks", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.Header.Get("Accept")).To(Equal("application/json, application/jwks"))
			_, _ = w.Write([]byte(`{"keys":[`))
		}))
		defer server.Close()

		_, err := Fetch(context.TODO(), server.URL, FetchOpt.WithContentType(ContentTypeKeySet))
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("invalid JWKS response"))
	})

	t.Run("rejects non wasm module", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		_, err := Fetch(context.TODO(), server.URL, FetchOpt.WithContentType(ContentTypeModule))
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("invalid wasm module response"))
	})

	t.Run("enforces max size", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(wasm.Preamble())
		}))
		defer server.Close()

		_, err := Fetch(context.TODO(), server.URL, FetchOpt.WithMaxSize(4))
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("exceeds 4 bytes"))
	})

	t.Run("fails with HTTP URL", func(t *testing.T) {
		g := NewWithT(t)

		_, err := Fetch(context.TODO(), "http://example.com/module.wasm")

		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("HTTPS scheme is required"))
	})

	t.Run("fails with localhost when not allowed", func(t *testing.T) {
		g := NewWithT(t)

		_, err := Fetch(context.TODO(), "http://localhost:8080/module.wasm", FetchOpt.WithLocalhost(false))

		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("HTTPS scheme is required"))
	})

	t.Run("fails with invalid URL", func(t *testing.T) {
		g := NewWithT(t)

		_, err := Fetch(context.TODO(), "://invalid-url")

		g.Expect(err).To(HaveOccurred())
	})

	t.Run("fails with status code", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := Fetch(context.TODO(), server.URL)
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("failed with status: 403"))
	})

	t.Run("fails with empty body", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, err := Fetch(context.TODO(), server.URL)
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("response body is empty"))
	})
}

func TestFetchKeySet(t *testing.T) {
	t.Run("returns the key set", func(t *testing.T) {
		g := NewWithT(t)

		account, err := nkey.CreatePair(nkey.RoleAccount)
		g.Expect(err).ToNot(HaveOccurred())
		keySet, err := nkey.NewKeySet(account)
		g.Expect(err).ToNot(HaveOccurred())
		data, err := keySet.ToJSON()
		g.Expect(err).ToNot(HaveOccurred())

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.Expect(r.Header.Get("Accept")).To(ContainSubstring(string(ContentTypeKeySet)))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		}))
		defer server.Close()

		fetched, err := FetchKeySet(context.TODO(), server.URL)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(fetched.PublicKeys()).To(Equal([]string{account.PublicKey()}))
	})

	t.Run("rejects an empty key set", func(t *testing.T) {
		g := NewWithT(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"keys":[]}`))
		}))
		defer server.Close()

		_, err := FetchKeySet(context.TODO(), server.URL)
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("key set has no keys"))
	})
}
