// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"sigs.k8s.io/yaml"

	"github.com/controlplaneio-fluxcd/modclaims/internal/module"
)

func printTable(writer io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

// printStructured writes v as indented JSON or as YAML.
func printStructured(format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling output: %w", err)
		}
		rootCmd.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling output: %w", err)
		}
		rootCmd.Print(string(data))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return nil
}

// loadModule reads a module from a path, stdin, URL or OCI reference.
// fetchOptions returns the HTTP fetch options set by the root flags.
func fetchOptions() []module.FetchOption {
	return []module.FetchOption{
		module.FetchOpt.WithRetries(rootArgs.retries),
		module.FetchOpt.WithMaxSize(rootArgs.maxSize),
		module.FetchOpt.WithInsecureSkipVerify(rootArgs.insecureSkipVerify),
		module.FetchOpt.WithLocalhost(rootArgs.allowLocalhost),
		module.FetchOpt.WithUserAgent("modclaims/" + VERSION),
	}
}

func loadModule(ctx context.Context, source string) ([]byte, error) {
	return module.Load(ctx, source, rootCmd.InOrStdin(), fetchOptions()...)
}

func loadToken(ctx context.Context, source string) (string, error) {
	return module.LoadToken(ctx, source, rootCmd.InOrStdin(), fetchOptions()...)
}

// writeFile writes data to path, or to stdout when path is "-".
func writeFile(path string, data []byte, perm os.FileMode) error {
	if path == "-" {
		_, err := rootCmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, perm)
}

func isDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to check path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", path)
	}
	return nil
}
