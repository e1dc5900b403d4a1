// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package nkey

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCreatePair(t *testing.T) {
	for _, role := range Roles() {
		t.Run("generates "+role.String()+" identity", func(t *testing.T) {
			g := NewWithT(t)
			kp, err := CreatePair(role)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(kp.Role()).To(Equal(role))
			g.Expect(kp.HasPrivateKey()).To(BeTrue())

			pk := kp.PublicKey()
			g.Expect(pk).To(HaveLen(EncodedPublicKeyLength))
			g.Expect(pk).To(Equal(strings.ToUpper(pk)))

			seed, err := kp.Seed()
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(seed).To(HaveLen(EncodedSeedLength))
			g.Expect(seed[0]).To(Equal(byte('S')))
			g.Expect(seed[1]).To(Equal(pk[0]))
		})
	}

	t.Run("encodes role in the first character", func(t *testing.T) {
		g := NewWithT(t)
		expected := map[Role]byte{
			RoleAccount:  'A',
			RoleCluster:  'C',
			RoleModule:   'M',
			RoleServer:   'N',
			RoleOperator: 'O',
			RoleUser:     'U',
			RoleCurve:    'X',
		}
		for role, prefix := range expected {
			kp, err := CreatePair(role)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(kp.PublicKey()[0]).To(Equal(prefix), role.String())
		}
	})

	t.Run("fails with unknown role", func(t *testing.T) {
		g := NewWithT(t)
		_, err := CreatePair(Role(1))
		g.Expect(errors.Is(err, ErrInvalidRole)).To(BeTrue())
	})

	t.Run("fails when the random source is exhausted", func(t *testing.T) {
		g := NewWithT(t)
		_, err := CreatePairWithRand(RoleAccount, bytes.NewReader(make([]byte, 10)))
		g.Expect(err).To(HaveOccurred())
	})

	t.Run("is deterministic for a given random source", func(t *testing.T) {
		g := NewWithT(t)
		src := bytes.Repeat([]byte{7}, ed25519.SeedSize)
		kp1, err := CreatePairWithRand(RoleModule, bytes.NewReader(src))
		g.Expect(err).ToNot(HaveOccurred())
		kp2, err := CreatePairWithRand(RoleModule, bytes.NewReader(src))
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(kp1.PublicKey()).To(Equal(kp2.PublicKey()))
	})
}

func TestFromSeed(t *testing.T) {
	t.Run("round-trips seed encoding", func(t *testing.T) {
		g := NewWithT(t)
		for _, role := range Roles() {
			kp, err := CreatePair(role)
			g.Expect(err).ToNot(HaveOccurred())
			seed, err := kp.Seed()
			g.Expect(err).ToNot(HaveOccurred())

			restored, err := FromSeed(seed)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(restored.Role()).To(Equal(role))
			g.Expect(restored.PublicKey()).To(Equal(kp.PublicKey()))
			g.Expect(restored.Equal(kp)).To(BeTrue())

			restoredSeed, err := restored.Seed()
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(restoredSeed).To(Equal(seed))
		}
	})

	t.Run("restored key signs identically", func(t *testing.T) {
		g := NewWithT(t)
		kp, err := CreatePair(RoleAccount)
		g.Expect(err).ToNot(HaveOccurred())
		seed, _ := kp.Seed()
		restored, err := FromSeed(seed)
		g.Expect(err).ToNot(HaveOccurred())

		data := []byte("module bytes")
		sig1, err := kp.Sign(data)
		g.Expect(err).ToNot(HaveOccurred())
		sig2, err := restored.Sign(data)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(sig1).To(Equal(sig2))
		g.Expect(kp.Verify(data, sig2)).To(BeTrue())
	})

	t.Run("fails with public key instead of seed", func(t *testing.T) {
		g := NewWithT(t)
		kp, _ := CreatePair(RoleAccount)
		_, err := FromSeed(kp.PublicKey())
		g.Expect(errors.Is(err, ErrInvalidKeyLength)).To(BeTrue())
	})

	t.Run("fails with corrupted checksum", func(t *testing.T) {
		g := NewWithT(t)
		kp, _ := CreatePair(RoleAccount)
		seed, _ := kp.Seed()
		corrupted := []byte(seed)
		corrupted[10] = flipChar(corrupted[10])
		_, err := FromSeed(string(corrupted))
		g.Expect(errors.Is(err, ErrInvalidChecksum)).To(BeTrue())
	})

	t.Run("fails with invalid base32", func(t *testing.T) {
		g := NewWithT(t)
		_, err := FromSeed(strings.Repeat("1", EncodedSeedLength))
		g.Expect(errors.Is(err, ErrInvalidEncoding)).To(BeTrue())
	})

	t.Run("fails with non-canonical trailing bits", func(t *testing.T) {
		g := NewWithT(t)
		kp, _ := CreatePair(RoleAccount)
		seed, _ := kp.Seed()

		const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
		last := strings.IndexByte(alphabet, seed[len(seed)-1])
		g.Expect(last & 0x03).To(BeZero())

		for bits := 1; bits <= 3; bits++ {
			alt := seed[:len(seed)-1] + string(alphabet[last|bits])
			_, err := FromSeed(alt)
			g.Expect(errors.Is(err, ErrInvalidEncoding)).To(BeTrue(), alt)
		}
	})

	t.Run("fails with non-seed prefix", func(t *testing.T) {
		g := NewWithT(t)
		raw := append([]byte{byte(RoleAccount), 0}, make([]byte, KeySize)...)
		_, err := FromSeed(encode(raw[:2], raw[2:]))
		g.Expect(errors.Is(err, ErrInvalidPrefix)).To(BeTrue())
	})
}

func TestFromPublicKey(t *testing.T) {
	t.Run("builds verify-only identity", func(t *testing.T) {
		g := NewWithT(t)
		kp, err := CreatePair(RoleAccount)
		g.Expect(err).ToNot(HaveOccurred())

		pub, err := FromPublicKey(kp.PublicKey())
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(pub.HasPrivateKey()).To(BeFalse())
		g.Expect(pub.Equal(kp)).To(BeTrue())

		_, err = pub.Seed()
		g.Expect(errors.Is(err, ErrNoPrivateKey)).To(BeTrue())
		_, err = pub.Sign([]byte("data"))
		g.Expect(errors.Is(err, ErrNoPrivateKey)).To(BeTrue())
		_, err = pub.PrivateKey()
		g.Expect(errors.Is(err, ErrNoPrivateKey)).To(BeTrue())

		data := []byte("data")
		sig, err := kp.Sign(data)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(pub.Verify(data, sig)).To(BeTrue())
	})

	t.Run("rejects unexpected role", func(t *testing.T) {
		g := NewWithT(t)
		user, _ := CreatePair(RoleUser)
		_, err := FromPublicKey(user.PublicKey(), RoleAccount, RoleOperator)
		g.Expect(errors.Is(err, ErrRoleMismatch)).To(BeTrue())
		g.Expect(IsValidPublicKey(user.PublicKey(), RoleAccount)).To(BeFalse())
		g.Expect(IsValidPublicKey(user.PublicKey(), RoleUser)).To(BeTrue())
		g.Expect(IsValidPublicKey(user.PublicKey())).To(BeTrue())
	})

	t.Run("detects any corrupted character", func(t *testing.T) {
		g := NewWithT(t)
		kp, _ := CreatePair(RoleModule)
		pk := kp.PublicKey()
		for i := range len(pk) {
			corrupted := []byte(pk)
			corrupted[i] = flipChar(corrupted[i])
			_, err := FromPublicKey(string(corrupted))
			g.Expect(err).To(HaveOccurred(), "position %d", i)
		}
	})

	t.Run("rejects unknown role byte", func(t *testing.T) {
		g := NewWithT(t)
		_, err := FromPublicKey(encode([]byte{1 << 3}, make([]byte, KeySize)))
		g.Expect(errors.Is(err, ErrInvalidPrefix)).To(BeTrue())
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		g := NewWithT(t)
		_, err := FromPublicKey("ABC")
		g.Expect(errors.Is(err, ErrInvalidKeyLength)).To(BeTrue())
	})

	t.Run("same key material with different roles is not equal", func(t *testing.T) {
		g := NewWithT(t)
		seed := bytes.Repeat([]byte{42}, KeySize)
		account, err := FromRawSeed(RoleAccount, seed)
		g.Expect(err).ToNot(HaveOccurred())
		module, err := FromRawSeed(RoleModule, seed)
		g.Expect(err).ToNot(HaveOccurred())

		g.Expect(account.RawPublicKey()).To(Equal(module.RawPublicKey()))
		g.Expect(account.PublicKey()).ToNot(Equal(module.PublicKey()))
		g.Expect(account.Equal(module)).To(BeFalse())
	})
}

func TestVerify(t *testing.T) {
	g := NewWithT(t)
	kp, err := CreatePair(RoleAccount)
	g.Expect(err).ToNot(HaveOccurred())
	data := []byte("payload")
	sig, err := kp.Sign(data)
	g.Expect(err).ToNot(HaveOccurred())

	t.Run("rejects truncated signature", func(t *testing.T) {
		g := NewWithT(t)
		g.Expect(kp.Verify(data, sig[:10])).To(BeFalse())
		g.Expect(kp.Verify(data, nil)).To(BeFalse())
	})

	t.Run("rejects modified data", func(t *testing.T) {
		g := NewWithT(t)
		g.Expect(kp.Verify([]byte("payloaD"), sig)).To(BeFalse())
	})

	t.Run("rejects signature of another key", func(t *testing.T) {
		g := NewWithT(t)
		other, _ := CreatePair(RoleAccount)
		otherSig, _ := other.Sign(data)
		g.Expect(kp.Verify(data, otherSig)).To(BeFalse())
	})

	t.Run("refuses to sign with curve keys", func(t *testing.T) {
		g := NewWithT(t)
		curve, _ := CreatePair(RoleCurve)
		_, err := curve.Sign(data)
		g.Expect(errors.Is(err, ErrCannotSign)).To(BeTrue())
	})
}

func TestParseRole(t *testing.T) {
	g := NewWithT(t)
	for _, role := range Roles() {
		parsed, err := ParseRole(strings.ToUpper(role.String()))
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(parsed).To(Equal(role))
	}
	_, err := ParseRole("service")
	g.Expect(errors.Is(err, ErrInvalidRole)).To(BeTrue())
	g.Expect(RoleAccount.CanIssue()).To(BeTrue())
	g.Expect(RoleOperator.CanIssue()).To(BeTrue())
	g.Expect(RoleModule.CanIssue()).To(BeFalse())
}

// flipChar returns a different character of the base32 alphabet.
func flipChar(c byte) byte {
	if c == 'A' {
		return 'B'
	}
	return 'A'
}
