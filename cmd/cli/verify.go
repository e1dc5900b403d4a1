// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <module>",
	Short: "Verify the capability token of a module",
	Long: `The verify command checks the signature, the validity window and the module hash
of the token embedded in a module, and exits with an error when any check fails.`,
	Example: `  # Verify a module signed by a trusted account
  modclaims verify echo_s.wasm --issuer=ACQJ...

  # Verify a detached token against the hash of its module
  modclaims verify echo.jwt --token --expected-hash=$(modclaims hash echo.wasm)

  # Verify with the trusted issuers read from env
  export MODCLAIMS_EXPECTED_ISSUER="$(cat ./keys/account.pub)"
  modclaims verify echo_s.wasm
`,
	Args: cobra.ExactArgs(1),
	RunE: verifyCmdRun,
}

var verifyArgs checkFlags

func init() {
	addCheckFlags(verifyCmd, &verifyArgs)
	rootCmd.AddCommand(verifyCmd)
}

func verifyCmdRun(cmd *cobra.Command, args []string) error {
	inspection, err := inspectModule(cmd.Context(), args[0], verifyArgs)
	if err != nil {
		return err
	}

	if problems := inspection.Report.Problems(); len(problems) > 0 {
		return fmt.Errorf("verification failed: %s", strings.Join(problems, ", "))
	}

	c := inspection.Token.Claims
	rootCmd.Printf("✔ module %s verified\n", c.Subject)
	rootCmd.Printf("✔ issued by %s\n", c.Issuer)
	return nil
}
