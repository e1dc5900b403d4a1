// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/module"
)

var (
	VERSION = "0.0.0-dev.0"
)

var rootCmd = &cobra.Command{
	Use:               "modclaims",
	Version:           VERSION,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	Short:             "Command line utility for signing WebAssembly modules with capability claims",
	Long: `The modclaims CLI generates role-tagged Ed25519 keys, signs capability claims
into a custom section of WebAssembly modules and verifies them offline.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.SetContext(logr.NewContext(cmd.Context(), newLogger(cmd.ErrOrStderr())))
	},
}

type rootFlags struct {
	timeout            time.Duration
	verbose            bool
	retries            int
	maxSize            int64
	insecureSkipVerify bool
	allowLocalhost     bool
}

var rootArgs = newRootFlags()

func newRootFlags() rootFlags {
	return rootFlags{
		timeout:        time.Minute,
		retries:        2,
		maxSize:        module.DefaultMaxSize,
		allowLocalhost: true,
	}
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&rootArgs.timeout, "timeout", rootArgs.timeout,
		"The length of time to wait before giving up on the current operation.")
	rootCmd.PersistentFlags().BoolVarP(&rootArgs.verbose, "verbose", "v", false,
		"Print debug logs to stderr.")
	rootCmd.PersistentFlags().IntVar(&rootArgs.retries, "retries", rootArgs.retries,
		"The number of retries when fetching modules, tokens and key sets over HTTP.")
	rootCmd.PersistentFlags().Int64Var(&rootArgs.maxSize, "max-size", rootArgs.maxSize,
		"The maximum size in bytes of a fetched module, token or key set.")
	rootCmd.PersistentFlags().BoolVar(&rootArgs.insecureSkipVerify, "insecure-skip-tls-verify", false,
		"Skip TLS certificate verification when fetching over HTTPS.")
	rootCmd.PersistentFlags().BoolVar(&rootArgs.allowLocalhost, "allow-http-localhost", rootArgs.allowLocalhost,
		"Allow plain HTTP when fetching from localhost.")
	rootCmd.SetOut(os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrf("✗ %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a logger writing to w when verbose output is enabled.
func newLogger(w io.Writer) logr.Logger {
	if !rootArgs.verbose {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp: true,
		Verbosity:    1,
	})
}
