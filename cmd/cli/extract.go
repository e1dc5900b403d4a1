// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

var extractCmd = &cobra.Command{
	Use:   "extract <module>",
	Short: "Print the capability token embedded in a module",
	Example: `  # Print the raw token
  modclaims extract echo_s.wasm

  # Print the decoded claims without verifying the signature
  modclaims extract echo_s.wasm --decode

  # Save the token to a file
  modclaims extract echo_s.wasm --output=echo.jwt
`,
	Args: cobra.ExactArgs(1),
	RunE: extractCmdRun,
}

type extractFlags struct {
	output string
	decode bool
}

var extractArgs extractFlags

func init() {
	extractCmd.Flags().StringVarP(&extractArgs.output, "output", "o", "",
		"path to write the token to, prints to stdout if not set")
	extractCmd.Flags().BoolVar(&extractArgs.decode, "decode", false,
		"print the claims as JSON instead of the raw token (the signature is not verified)")
	rootCmd.AddCommand(extractCmd)
}

func extractCmdRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	data, err := loadModule(ctx, args[0])
	if err != nil {
		return err
	}

	raw, err := wasm.Extract(data, wasm.ClaimsSectionName)
	if err != nil {
		return err
	}

	out := []byte(raw + "\n")
	if extractArgs.decode {
		tok, err := token.Parse(raw)
		if err != nil {
			return err
		}
		payload, err := claims.Encode(tok.Claims)
		if err != nil {
			return err
		}
		out = pretty.Pretty(payload)
	}

	if extractArgs.output == "" {
		rootCmd.Print(string(out))
		return nil
	}

	if err := writeFile(extractArgs.output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	rootCmd.Printf("✔ token written to: %s\n", extractArgs.output)
	return nil
}
