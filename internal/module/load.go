// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package module

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
)

// StdinSource is the source name that reads the module from stdin.
const StdinSource = "-"

// Load reads a module from a file path, stdin ("-"), an HTTP(S) URL
// or an "oci://" artifact reference.
func Load(ctx context.Context, source string, stdin io.Reader, opts ...FetchOption) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx)

	var (
		data []byte
		err  error
	)
	switch {
	case source == StdinSource:
		data, err = io.ReadAll(io.LimitReader(stdin, DefaultMaxSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read module from stdin: %w", err)
		}
	case strings.HasPrefix(source, "oci://"):
		var digest string
		data, digest, err = PullModule(ctx, source, authn.DefaultKeychain)
		if err != nil {
			return nil, err
		}
		log.V(1).Info("pulled module", "url", source, "digest", digest)
	case strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "http://"):
		fetchOpts := append([]FetchOption{FetchOpt.WithContentType(ContentTypeModule)}, opts...)
		data, err = Fetch(ctx, source, fetchOpts...)
		if err != nil {
			return nil, err
		}
		log.V(1).Info("fetched module", "url", source, "size", len(data))
	default:
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read module: %w", err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyModule, source)
	}
	return data, nil
}
