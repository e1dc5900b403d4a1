// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
)

var jwksCmd = &cobra.Command{
	Use:   "jwks <public-key>...",
	Short: "Export public keys as a JSON Web Key Set",
	Example: `  # Export the trusted issuers as JWKS
  modclaims jwks ./keys/account.pub ./keys/operator.pub > issuers.jwks
`,
	Args: cobra.MinimumNArgs(1),
	RunE: jwksCmdRun,
}

func init() {
	rootCmd.AddCommand(jwksCmd)
}

func jwksCmdRun(cmd *cobra.Command, args []string) error {
	var pairs []*nkey.KeyPair
	for _, arg := range args {
		kp, err := loadPublicKey(arg)
		if err != nil {
			return fmt.Errorf("invalid public key %q: %w", arg, err)
		}
		pairs = append(pairs, kp)
	}

	keySet, err := nkey.NewKeySet(pairs...)
	if err != nil {
		return err
	}

	data, err := keySet.ToJSON()
	if err != nil {
		return err
	}

	rootCmd.Println(string(data))
	return nil
}
