// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wI2L/jsondiff"
	"sigs.k8s.io/yaml"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/token"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

var diffCmd = &cobra.Command{
	Use:   "diff <source> <target>",
	Short: "Diff the capability claims of two modules and generate a JSON patch",
	Long: `The diff command compares the claims embedded in two modules and produces a JSON patch
(RFC 6902) that transforms the source claims into the target claims.
Signatures are not verified.`,
	Example: `  # Diff two releases of a module
  modclaims diff echo-v1_s.wasm oci://ghcr.io/org/modules/echo:2.0.0

  # Diff with JSON patch output
  modclaims diff echo-v1_s.wasm echo-v2_s.wasm --output=json-patch
`,
	Args: cobra.ExactArgs(2),
	RunE: diffCmdRun,
}

type diffFlags struct {
	output string
}

var diffArgs = diffFlags{output: "json-patch-yaml"}

func init() {
	diffCmd.Flags().StringVarP(&diffArgs.output, "output", "o", diffArgs.output,
		"Output format for the diff result. Supported formats: json-patch-yaml, json-patch.")
	if err := diffCmd.RegisterFlagCompletionFunc("output", fixedCompletionFunc("json-patch-yaml", "json-patch")); err != nil {
		rootCmd.PrintErrf("✗ failed to register output completion function: %v\n", err)
	}
	rootCmd.AddCommand(diffCmd)
}

func diffCmdRun(cmd *cobra.Command, args []string) error {
	if diffArgs.output != "json-patch-yaml" && diffArgs.output != "json-patch" {
		return fmt.Errorf("unsupported output format %q, supported formats: json-patch-yaml, json-patch", diffArgs.output)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	source, err := loadClaims(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	target, err := loadClaims(ctx, args[1])
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}

	patch, err := jsondiff.CompareJSON(source, target, jsondiff.Rationalize())
	if err != nil {
		return fmt.Errorf("computing diff: %w", err)
	}

	switch diffArgs.output {
	case "json-patch":
		patchJSON, err := json.MarshalIndent(patch, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling patch: %w", err)
		}
		rootCmd.Println(string(patchJSON))
	case "json-patch-yaml":
		patchYAML, err := yaml.Marshal(patch)
		if err != nil {
			return fmt.Errorf("marshalling patch: %w", err)
		}
		rootCmd.Print(string(patchYAML))
	}

	return nil
}

// loadClaims returns the canonical claims JSON embedded in a module.
func loadClaims(ctx context.Context, source string) ([]byte, error) {
	data, err := loadModule(ctx, source)
	if err != nil {
		return nil, err
	}

	raw, err := wasm.Extract(data, wasm.ClaimsSectionName)
	if err != nil {
		return nil, err
	}

	tok, err := token.Parse(raw)
	if err != nil {
		return nil, err
	}

	return claims.Encode(tok.Claims)
}
