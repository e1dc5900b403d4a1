// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/controlplaneio-fluxcd/modclaims/internal/module"
	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
)

const (
	// issuerSeedEnvVar holds the seed of the account or operator signing key.
	issuerSeedEnvVar = "MODCLAIMS_ISSUER_SEED"

	// moduleSeedEnvVar holds the seed of the module identity.
	moduleSeedEnvVar = "MODCLAIMS_MODULE_SEED"

	// expectedIssuerEnvVar holds a comma separated list of trusted issuer public keys.
	expectedIssuerEnvVar = "MODCLAIMS_EXPECTED_ISSUER"
)

// roleFlag is a pflag.Value that accepts key role names.
type roleFlag nkey.Role

var _ pflag.Value = (*roleFlag)(nil)

func (r *roleFlag) String() string {
	return nkey.Role(*r).String()
}

func (r *roleFlag) Set(value string) error {
	role, err := nkey.ParseRole(value)
	if err != nil {
		return err
	}
	*r = roleFlag(role)
	return nil
}

func (r *roleFlag) Type() string {
	return "role"
}

// roleNames returns the names of all roles for flag help.
func roleNames() string {
	var names []string
	for _, role := range nkey.Roles() {
		names = append(names, role.String())
	}
	return strings.Join(names, ", ")
}

// readKeyValue returns the trimmed content of the file at value,
// or value itself when it does not name a file.
func readKeyValue(value string) (string, error) {
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		data, err := os.ReadFile(value)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(value), nil
}

// loadSeed reads a key pair from the flag value (seed or seed file path)
// or from the environment variable. It returns nil when neither is set.
func loadSeed(flagValue, envVarName string) (*nkey.KeyPair, error) {
	value := flagValue
	if value == "" {
		value = os.Getenv(envVarName)
	}
	if value == "" {
		return nil, nil
	}

	seed, err := readKeyValue(value)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	return nkey.FromSeed(seed)
}

// loadPublicKey reads an encoded public key from the value
// (key or key file path).
func loadPublicKey(value string, roles ...nkey.Role) (*nkey.KeyPair, error) {
	pk, err := readKeyValue(value)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return nkey.FromPublicKey(pk, roles...)
}

// expectedIssuers returns the issuers from the flag, or from the
// environment variable when the flag is empty. A value starting with
// https:// is fetched as a JWKS and every account or operator key in it is trusted.
func expectedIssuers(ctx context.Context, flagValues []string) ([]string, error) {
	values := flagValues
	if len(values) == 0 {
		if env := os.Getenv(expectedIssuerEnvVar); env != "" {
			values = strings.Split(env, ",")
		}
	}

	var issuers []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://") {
			keySet, err := module.FetchKeySet(ctx, value, fetchOptions()...)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch issuers from %s: %w", value, err)
			}
			found := false
			for _, pk := range keySet.PublicKeys() {
				if nkey.IsValidPublicKey(pk, nkey.RoleAccount, nkey.RoleOperator) {
					issuers = append(issuers, pk)
					found = true
				}
			}
			if !found {
				return nil, fmt.Errorf("no account or operator keys found in %s", value)
			}
			continue
		}

		kp, err := loadPublicKey(value, nkey.RoleAccount, nkey.RoleOperator)
		if err != nil {
			return nil, fmt.Errorf("invalid issuer %q: %w", value, err)
		}
		issuers = append(issuers, kp.PublicKey())
	}
	return issuers, nil
}
