// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/controlplaneio-fluxcd/modclaims/internal/nkey"
	"github.com/controlplaneio-fluxcd/modclaims/internal/wasm"
)

var timeout = 30 * time.Second

// executeCommand executes a CLI command with the given args and returns the output and error.
// This helper function can be reused across all CLI command tests.
func executeCommand(args []string) (string, error) {
	defer resetCmdArgs()

	// Capture output
	buf := new(bytes.Buffer)

	// Set up the command
	cmd := rootCmd
	cmd.SetArgs(args)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	// Execute command
	err := cmd.Execute()

	return buf.String(), err
}

// resetCmdArgs resets all command-specific flags to their default values.
// This should be called between tests to ensure clean state.
func resetCmdArgs() {
	rootArgs = newRootFlags()
	rootArgs.timeout = timeout

	keygenArgs = keygenFlags{}
	signArgs = signFlags{}
	extractArgs = extractFlags{}
	inspectArgs = inspectFlags{output: "table"}
	verifyArgs = checkFlags{}
	hashArgs = hashFlags{}
	stripArgs = stripFlags{}
	diffArgs = diffFlags{output: "json-patch-yaml"}
}

// writeTestModule writes a module exporting an empty function and returns its path.
func writeTestModule(t *testing.T, dir, name string) string {
	t.Helper()
	g := NewWithT(t)

	data := wasm.Assemble(
		wasm.NewSection(1, []byte{0x01, 0x60, 0x00, 0x00}),
		wasm.NewSection(3, []byte{0x01, 0x00}),
		wasm.NewSection(7, []byte{0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00}),
		wasm.NewSection(10, []byte{0x01, 0x02, 0x00, 0x0b}),
	)

	path := filepath.Join(dir, name)
	g.Expect(os.WriteFile(path, data, 0o644)).To(Succeed())
	return path
}

type testSeeds struct {
	account       *nkey.KeyPair
	accountSeed   string
	module        *nkey.KeyPair
	moduleSeed    string
	accountPubKey string
}

func newTestSeeds(t *testing.T) testSeeds {
	t.Helper()
	g := NewWithT(t)

	account, err := nkey.CreatePair(nkey.RoleAccount)
	g.Expect(err).ToNot(HaveOccurred())
	accountSeed, err := account.Seed()
	g.Expect(err).ToNot(HaveOccurred())

	module, err := nkey.CreatePair(nkey.RoleModule)
	g.Expect(err).ToNot(HaveOccurred())
	moduleSeed, err := module.Seed()
	g.Expect(err).ToNot(HaveOccurred())

	return testSeeds{
		account:       account,
		accountSeed:   accountSeed,
		module:        module,
		moduleSeed:    moduleSeed,
		accountPubKey: account.PublicKey(),
	}
}
