// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/module"
	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
)

var signCmd = &cobra.Command{
	Use:   "sign <module>",
	Short: "Sign capability claims into a WebAssembly module",
	Long: `The sign command builds the capability claims of a module, signs them with an
account or operator key and embeds the token in the module's "jwt" custom section.
The module can be a local file, "-" for stdin, an HTTPS URL or an OCI artifact URL.`,
	Example: `  # Sign a module with capabilities valid for a year
  modclaims sign echo.wasm \
    --issuer-seed=./keys/account.nk \
    --module-seed=./keys/echo-module.nk \
    --name=echo --ver=1.0.0 --rev=1 \
    --cap=wasmcloud:httpserver --cap=wasmcloud:logging \
    --expires-in-days=365 \
    --output=echo_s.wasm

  # Sign with the issuer seed read from env and a freshly generated module key
  export MODCLAIMS_ISSUER_SEED="$(cat ./keys/account.nk)"
  modclaims sign oci://ghcr.io/org/modules/echo:1.0.0 --name=echo -o echo_s.wasm
`,
	Args: cobra.ExactArgs(1),
	RunE: signCmdRun,
}

type signFlags struct {
	issuerSeed    string
	moduleSeed    string
	output        string
	name          string
	version       string
	revision      int64
	capabilities  []string
	tags          []string
	provider      bool
	expiresInDays int
	notBeforeDays int
}

var signArgs signFlags

func init() {
	signCmd.Flags().StringVar(&signArgs.issuerSeed, "issuer-seed", "",
		fmt.Sprintf("issuer seed or path to the seed file, defaults to the %s env var", issuerSeedEnvVar))
	signCmd.Flags().StringVar(&signArgs.moduleSeed, "module-seed", "",
		fmt.Sprintf("module seed or path to the seed file, defaults to the %s env var, a new key is generated if not set", moduleSeedEnvVar))
	signCmd.Flags().StringVarP(&signArgs.output, "output", "o", "",
		"path to the signed module, defaults to <module>_s.wasm next to a local module, use '-' for stdout")
	signCmd.Flags().StringVar(&signArgs.name, "name", "",
		"human-readable name of the module")
	signCmd.Flags().StringVar(&signArgs.version, "ver", "",
		"semantic version of the module")
	signCmd.Flags().Int64Var(&signArgs.revision, "rev", 0,
		"revision number of the module")
	signCmd.Flags().StringSliceVarP(&signArgs.capabilities, "cap", "c", nil,
		"capability granted to the module (can be specified multiple times)")
	signCmd.Flags().StringSliceVarP(&signArgs.tags, "tag", "t", nil,
		"tag attached to the claims (can be specified multiple times)")
	signCmd.Flags().BoolVar(&signArgs.provider, "provider", false,
		"mark the module as a capability provider")
	signCmd.Flags().IntVar(&signArgs.expiresInDays, "expires-in-days", 0,
		"number of days until the token expires, never expires if not set")
	signCmd.Flags().IntVar(&signArgs.notBeforeDays, "not-before-days", 0,
		"number of days until the token becomes valid, valid immediately if not set")
	if err := signCmd.RegisterFlagCompletionFunc("cap", capabilityCompletionFunc); err != nil {
		rootCmd.PrintErrf("✗ failed to register cap completion function: %v\n", err)
	}
	rootCmd.AddCommand(signCmd)
}

func signCmdRun(cmd *cobra.Command, args []string) error {
	source := args[0]

	output := signArgs.output
	if output == "" {
		if isRemoteSource(source) {
			return fmt.Errorf("--output flag is required for stdin, HTTP and OCI sources")
		}
		output = strings.TrimSuffix(source, filepath.Ext(source)) + "_s.wasm"
	}

	issuer, err := loadSeed(signArgs.issuerSeed, issuerSeedEnvVar)
	if err != nil {
		return fmt.Errorf("invalid issuer seed: %w", err)
	}
	if issuer == nil {
		return fmt.Errorf("issuer seed must be specified with --issuer-seed flag or %s environment variable",
			issuerSeedEnvVar)
	}

	moduleKey, err := loadSeed(signArgs.moduleSeed, moduleSeedEnvVar)
	if err != nil {
		return fmt.Errorf("invalid module seed: %w", err)
	}
	generated := moduleKey == nil
	if generated {
		moduleKey, err = nkey.CreatePair(nkey.RoleModule)
		if err != nil {
			return fmt.Errorf("failed to generate module key: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	data, err := loadModule(ctx, source)
	if err != nil {
		return err
	}

	signed, tok, err := module.SignModule(ctx, data, moduleKey, issuer, module.SignRequest{
		Name:          signArgs.name,
		Version:       signArgs.version,
		Revision:      signArgs.revision,
		Capabilities:  signArgs.capabilities,
		Tags:          signArgs.tags,
		Provider:      signArgs.provider,
		ExpiresInDays: signArgs.expiresInDays,
		NotBeforeDays: signArgs.notBeforeDays,
	})
	if err != nil {
		return err
	}

	if err := writeFile(output, signed, 0o644); err != nil {
		return fmt.Errorf("failed to write signed module: %w", err)
	}
	if output == "-" {
		return nil
	}

	if generated {
		rootCmd.Printf("✔ generated module key: %s\n", moduleKey.PublicKey())
	}
	rootCmd.Printf("✔ module hash: %s\n", tok.Claims.ModuleHash)
	rootCmd.Printf("✔ signed module written to: %s\n", output)
	return nil
}

// isRemoteSource reports whether the module source is not a local file.
func isRemoteSource(source string) bool {
	return source == module.StdinSource ||
		strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "oci://")
}
