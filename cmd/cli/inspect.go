// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/module"
	"github.com/controlplaneio-fluxcd/modclaims/internal/verify"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <module>",
	Short: "Print the capability claims of a module and the result of their validation",
	Example: `  # Inspect a local module
  modclaims inspect echo_s.wasm

  # Inspect a module from an OCI registry in YAML format
  modclaims inspect oci://ghcr.io/org/modules/echo:1.0.0 -o yaml

  # Inspect a token extracted from a module
  modclaims inspect echo.jwt --token

  # Check the claims against a trusted issuer and a version range
  modclaims inspect echo_s.wasm --issuer=./keys/account.pub --version-constraint="~1.0"
`,
	Args: cobra.ExactArgs(1),
	RunE: inspectCmdRun,
}

type checkFlags struct {
	issuers           []string
	versionConstraint string
	token             bool
	expectedHash      string
}

// addCheckFlags registers the validation flags shared by inspect and verify.
func addCheckFlags(cmd *cobra.Command, f *checkFlags) {
	cmd.Flags().StringSliceVar(&f.issuers, "issuer", nil,
		fmt.Sprintf("trusted issuer public key, key file or JWKS URL, defaults to the %s env var", expectedIssuerEnvVar))
	cmd.Flags().StringVar(&f.versionConstraint, "version-constraint", "",
		"semver constraint the version claim must satisfy")
	cmd.Flags().BoolVar(&f.token, "token", false,
		"treat the argument as a token file, URL or '-' for stdin instead of a module")
	cmd.Flags().StringVar(&f.expectedHash, "expected-hash", "",
		"module hash the token must be bound to, requires --token")
}

// verifyOptions builds the validation options from the flags.
func (f checkFlags) verifyOptions(ctx context.Context) ([]verify.VerifyOption, error) {
	var opts []verify.VerifyOption

	issuers, err := expectedIssuers(ctx, f.issuers)
	if err != nil {
		return nil, err
	}
	if len(issuers) > 0 {
		opts = append(opts, verify.VerifyOpt.WithExpectedIssuer(issuers...))
	}

	if f.versionConstraint != "" {
		constraint, err := semver.NewConstraint(f.versionConstraint)
		if err != nil {
			return nil, fmt.Errorf("invalid version constraint: %w", err)
		}
		opts = append(opts, verify.VerifyOpt.WithVersionConstraint(constraint))
	}

	if f.expectedHash != "" {
		opts = append(opts, verify.VerifyOpt.WithExpectedHash(f.expectedHash))
	}

	return opts, nil
}

type inspectFlags struct {
	checkFlags
	output string
}

var inspectArgs = inspectFlags{output: "table"}

func init() {
	addCheckFlags(inspectCmd, &inspectArgs.checkFlags)
	inspectCmd.Flags().StringVarP(&inspectArgs.output, "output", "o", inspectArgs.output,
		"output format, one of: table, json, yaml")
	if err := inspectCmd.RegisterFlagCompletionFunc("output", fixedCompletionFunc("table", "json", "yaml")); err != nil {
		rootCmd.PrintErrf("✗ failed to register output completion function: %v\n", err)
	}
	rootCmd.AddCommand(inspectCmd)
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	Claims     *claims.Claims `json:"claims"`
	Report     verify.Report  `json:"report"`
	CanUse     bool           `json:"canUse"`
	ModuleHash string         `json:"moduleHash,omitempty"`
	Problems   []string       `json:"problems,omitempty"`
}

func inspectCmdRun(cmd *cobra.Command, args []string) error {
	if o := inspectArgs.output; o != "table" && o != "json" && o != "yaml" {
		return fmt.Errorf("unsupported output format %q, supported formats: table, json, yaml", o)
	}

	inspection, err := inspectModule(cmd.Context(), args[0], inspectArgs.checkFlags)
	if err != nil {
		return err
	}

	if inspectArgs.output != "table" {
		return printStructured(inspectArgs.output, inspectResult{
			Claims:     inspection.Token.Claims,
			Report:     inspection.Report,
			CanUse:     inspection.Report.CanUse(),
			ModuleHash: inspection.ModuleHash,
			Problems:   inspection.Report.Problems(),
		})
	}

	printTable(rootCmd.OutOrStdout(), []string{"field", "value"}, inspectionRows(inspection))
	return nil
}

// inspectModule loads the module, or the token with --token,
// and validates the token at the current time.
func inspectModule(ctx context.Context, source string, flags checkFlags) (*module.Inspection, error) {
	if flags.expectedHash != "" && !flags.token {
		return nil, fmt.Errorf("--expected-hash can only be used with --token, the hash of a module is computed from its content")
	}

	ctx, cancel := context.WithTimeout(ctx, rootArgs.timeout)
	defer cancel()

	opts, err := flags.verifyOptions(ctx)
	if err != nil {
		return nil, err
	}

	if flags.token {
		raw, err := loadToken(ctx, source)
		if err != nil {
			return nil, err
		}
		return module.InspectToken(ctx, raw, time.Now(), opts...)
	}

	data, err := loadModule(ctx, source)
	if err != nil {
		return nil, err
	}

	return module.Inspect(ctx, data, time.Now(), opts...)
}

func inspectionRows(inspection *module.Inspection) [][]string {
	c := inspection.Token.Claims
	r := inspection.Report

	var capabilities []string
	for _, capability := range c.Capabilities {
		capabilities = append(capabilities, claims.CapabilityName(capability))
	}

	rows := [][]string{
		{"Issuer", c.Issuer},
		{"Module", c.Subject},
		{"Name", orNone(c.Name)},
		{"Version", orNone(c.Version)},
		{"Revision", strconv.FormatInt(c.Revision, 10)},
		{"Capabilities", orNone(strings.Join(capabilities, ", "))},
		{"Tags", orNone(strings.Join(c.Tags, ", "))},
		{"Provider", strconv.FormatBool(c.Provider)},
		{"Issued", c.IssuedAtTime().Format(time.RFC3339)},
		{"Not Before", formatBound(c.NotBefore, "immediately")},
		{"Expires", formatBound(c.Expires, "never")},
		{"Token ID", orNone(c.ID)},
		{"Module Hash", orNone(inspection.ModuleHash)},
		{"Signature Valid", strconv.FormatBool(r.SignatureValid)},
		{"Hash Matches", formatCheck(r.HashMatches)},
	}
	if r.IssuerMatches != nil {
		rows = append(rows, []string{"Issuer Trusted", formatCheck(r.IssuerMatches)})
	}
	if r.VersionMatches != nil {
		rows = append(rows, []string{"Version Matches", formatCheck(r.VersionMatches)})
	}
	rows = append(rows, []string{"Can Use", strconv.FormatBool(r.CanUse())})
	return rows
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func formatBound(unix int64, none string) string {
	if unix == 0 {
		return none
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func formatCheck(b *bool) string {
	if b == nil {
		return "not checked"
	}
	return strconv.FormatBool(*b)
}
