// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

var stripCmd = &cobra.Command{
	Use:   "strip <module>",
	Short: "Remove the capability token from a module",
	Long: `The strip command removes every "jwt" custom section from a module.
The hash of the stripped module equals the module hash claim of the removed token.`,
	Example: `  # Remove the token from a signed module
  modclaims strip echo_s.wasm -o echo.wasm
`,
	Args: cobra.ExactArgs(1),
	RunE: stripCmdRun,
}

type stripFlags struct {
	output string
}

var stripArgs stripFlags

func init() {
	stripCmd.Flags().StringVarP(&stripArgs.output, "output", "o", "",
		"path to the stripped module, defaults to <module>_unsigned.wasm next to a local module, use '-' for stdout")
	rootCmd.AddCommand(stripCmd)
}

func stripCmdRun(cmd *cobra.Command, args []string) error {
	source := args[0]

	output := stripArgs.output
	if output == "" {
		if isRemoteSource(source) {
			return fmt.Errorf("--output flag is required for stdin, HTTP and OCI sources")
		}
		output = strings.TrimSuffix(source, filepath.Ext(source)) + "_unsigned.wasm"
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	data, err := loadModule(ctx, source)
	if err != nil {
		return err
	}

	stripped, err := wasm.Strip(data, wasm.ClaimsSectionName)
	if err != nil {
		return err
	}

	if err := writeFile(output, stripped, 0o644); err != nil {
		return fmt.Errorf("failed to write module: %w", err)
	}
	if output == "-" {
		return nil
	}

	rootCmd.Printf("✔ module written to: %s\n", output)
	return nil
}
