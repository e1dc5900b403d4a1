// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/crane"
)

// PullModule downloads an artifact from an OCI repository and returns
// the content of its first layer together with the artifact digest.
func PullModule(ctx context.Context, ociURL string, keyChain authn.Keychain) ([]byte, string, error) {
	img, err := crane.Pull(strings.TrimPrefix(ociURL, "oci://"), crane.WithContext(ctx), crane.WithAuthFromKeychain(keyChain))
	if err != nil {
		return nil, "", fmt.Errorf("pulling artifact %s failed: %w", ociURL, err)
	}

	digest, err := img.Digest()
	if err != nil {
		return nil, "", fmt.Errorf("parsing digest for artifact %s failed: %w", ociURL, err)
	}

	layers, err := img.Layers()
	if err != nil {
		return nil, "", fmt.Errorf("listing layers in artifact %s failed: %w", ociURL, err)
	}

	if len(layers) < 1 {
		return nil, "", fmt.Errorf("no layers found in artifact %s", ociURL)
	}

	blob, err := layers[0].Compressed()
	if err != nil {
		return nil, "", fmt.Errorf("extracting layer from artifact %s failed: %w", ociURL, err)
	}
	defer func() { _ = blob.Close() }()

	data, err := io.ReadAll(io.LimitReader(blob, DefaultMaxSize))
	if err != nil {
		return nil, "", fmt.Errorf("reading layer from artifact %s failed: %w", ociURL, err)
	}

	return data, digest.String(), nil
}
