// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a role-tagged Ed25519 key pair",
	Example: `  # Generate an account key and print the public key and seed
  modclaims keygen --role=account

  # Generate a module key and write it to the keys directory
  modclaims keygen --role=module --name="Echo Server" --output-dir=./keys
`,
	Args: cobra.NoArgs,
	RunE: keygenCmdRun,
}

type keygenFlags struct {
	role      roleFlag
	name      string
	outputDir string
}

var keygenArgs keygenFlags

func init() {
	keygenCmd.Flags().Var(&keygenArgs.role, "role",
		fmt.Sprintf("key role, one of: %s", roleNames()))
	keygenCmd.Flags().StringVar(&keygenArgs.name, "name", "",
		"name used for the key file names (defaults to the role)")
	keygenCmd.Flags().StringVarP(&keygenArgs.outputDir, "output-dir", "o", "",
		"directory to write the seed (.nk) and public key (.pub) files, prints to stdout if not set")
	if err := keygenCmd.RegisterFlagCompletionFunc("role", roleCompletionFunc); err != nil {
		rootCmd.PrintErrf("✗ failed to register role completion function: %v\n", err)
	}
	rootCmd.AddCommand(keygenCmd)
}

func keygenCmdRun(cmd *cobra.Command, args []string) error {
	role := nkey.Role(keygenArgs.role)

	kp, err := nkey.CreatePair(role)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	seed, err := kp.Seed()
	if err != nil {
		return err
	}

	if keygenArgs.outputDir == "" {
		rootCmd.Printf("public key: %s\n", kp.PublicKey())
		rootCmd.Printf("seed: %s\n", seed)
		return nil
	}

	if err := isDir(keygenArgs.outputDir); err != nil {
		return err
	}

	name := keygenArgs.name
	if name == "" {
		name = role.String()
	}
	base := fmt.Sprintf("%s-%s", slug.Make(name), role)
	if slug.Make(name) == role.String() {
		base = role.String()
	}

	seedPath := filepath.Join(keygenArgs.outputDir, base+".nk")
	publicKeyPath := filepath.Join(keygenArgs.outputDir, base+".pub")

	if err := writeFile(seedPath, []byte(seed+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write seed: %w", err)
	}
	if err := writeFile(publicKeyPath, []byte(kp.PublicKey()+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	rootCmd.Printf("✔ seed written to: %s\n", seedPath)
	rootCmd.Printf("✔ public key written to: %s\n", publicKeyPath)
	return nil
}
