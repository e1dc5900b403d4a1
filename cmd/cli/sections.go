// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <module>",
	Short: "List the sections of a module",
	Example: `  # List the sections of a signed module
  modclaims sections echo_s.wasm
`,
	Args: cobra.ExactArgs(1),
	RunE: sectionsCmdRun,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func sectionsCmdRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	data, err := loadModule(ctx, args[0])
	if err != nil {
		return err
	}

	sections, err := wasm.Sections(data)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, sec := range sections {
		rows = append(rows, []string{
			strconv.Itoa(int(sec.ID)),
			sec.Kind(),
			sec.Name,
			strconv.Itoa(sec.Offset),
			strconv.Itoa(sec.Size),
		})
	}

	printTable(rootCmd.OutOrStdout(), []string{"id", "kind", "name", "offset", "size"}, rows)
	return nil
}
