// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/claims"
	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
)

var completionCmd = &cobra.Command{
	Use:   "completion",
	Short: "Generates completion scripts for various shells",
	Long:  "The completion sub-command generates completion scripts for various shells",
}

var completionBashCmd = &cobra.Command{
	Use:   "bash",
	Short: "Generates bash completion scripts",
	Example: `To load completion run

. <(modclaims completion bash)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
command -v modclaims >/dev/null && . <(modclaims completion bash)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenBashCompletionV2(rootCmd.OutOrStdout(), true)
	},
}

var completionFishCmd = &cobra.Command{
	Use:   "fish",
	Short: "Generates fish completion scripts",
	Example: `To configure your fish shell to load completions for each session write this script to your completions dir:

modclaims completion fish > ~/.config/fish/completions/modclaims.fish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenFishCompletion(rootCmd.OutOrStdout(), true)
	},
}

var completionZshCmd = &cobra.Command{
	Use:   "zsh",
	Short: "Generates zsh completion scripts",
	Example: `To load completion run

. <(modclaims completion zsh) && compdef _modclaims modclaims

or write a cached file in one of the completion directories in your ${fpath}:

modclaims completion zsh > _modclaims`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenZshCompletion(rootCmd.OutOrStdout())
	},
}

var completionPowerShellCmd = &cobra.Command{
	Use:   "powershell",
	Short: "Generates powershell completion scripts",
	Example: `To load completion run

. <(modclaims completion powershell)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenPowerShellCompletionWithDesc(rootCmd.OutOrStdout())
	},
}

func init() {
	completionCmd.AddCommand(completionBashCmd)
	completionCmd.AddCommand(completionFishCmd)
	completionCmd.AddCommand(completionZshCmd)
	completionCmd.AddCommand(completionPowerShellCmd)
	rootCmd.AddCommand(completionCmd)
}

// roleCompletionFunc completes key role names.
func roleCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var comps []string
	for _, role := range nkey.Roles() {
		if strings.HasPrefix(role.String(), toComplete) {
			comps = append(comps, role.String())
		}
	}
	return comps, cobra.ShellCompDirectiveNoFileComp
}

// capabilityCompletionFunc completes well-known capability namespaces
// with their friendly names as descriptions.
func capabilityCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var comps []string
	for _, capability := range claims.KnownCapabilities() {
		if strings.HasPrefix(capability, toComplete) {
			comps = append(comps, capability+"\t"+claims.CapabilityName(capability))
		}
	}
	return comps, cobra.ShellCompDirectiveNoFileComp
}

// fixedCompletionFunc returns a completion function for a fixed set of values.
func fixedCompletionFunc(values ...string) cobra.CompletionFunc {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}
