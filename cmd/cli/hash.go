// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

var hashCmd = &cobra.Command{
	Use:   "hash <module>",
	Short: "Print the hash of a module without its token section",
	Example: `  # Print the hex digest recorded in the module hash claim
  modclaims hash echo.wasm

  # Print the digest with the algorithm prefix
  modclaims hash echo.wasm --digest
`,
	Args: cobra.ExactArgs(1),
	RunE: hashCmdRun,
}

type hashFlags struct {
	digest bool
}

var hashArgs hashFlags

func init() {
	hashCmd.Flags().BoolVar(&hashArgs.digest, "digest", false,
		"print the digest in <algorithm>:<hex> format")
	rootCmd.AddCommand(hashCmd)
}

func hashCmdRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	data, err := loadModule(ctx, args[0])
	if err != nil {
		return err
	}

	d, err := wasm.DigestExcluding(data, wasm.ClaimsSectionName)
	if err != nil {
		return err
	}

	if hashArgs.digest {
		rootCmd.Println(d.String())
		return nil
	}
	rootCmd.Println(d.Encoded())
	return nil
}
