// Copyright 2026 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package claims

import (
	"maps"
	"slices"
)

// Well-known capability namespaces.
const (
	CapMessaging    = "wasmcloud:messaging"
	CapKeyValue     = "wasmcloud:keyvalue"
	CapHTTPServer   = "wasmcloud:httpserver"
	CapHTTPClient   = "wasmcloud:httpclient"
	CapBlobstore    = "wasmcloud:blobstore"
	CapEventStreams = "wasmcloud:eventstreams"
	CapExtras       = "wasmcloud:extras"
	CapLogging      = "wasmcloud:logging"
)

var capabilityNames = map[string]string{
	CapMessaging:    "Messaging",
	CapKeyValue:     "K/V Store",
	CapHTTPServer:   "HTTP Server",
	CapHTTPClient:   "HTTP Client",
	CapBlobstore:    "Blob Store",
	CapEventStreams: "Event Streams",
	CapExtras:       "Extras",
	CapLogging:      "Logging",
}

// CapabilityName returns the friendly name of a well-known capability,
// or the capability itself when it is not well known.
func CapabilityName(capability string) string {
	if name, ok := capabilityNames[capability]; ok {
		return name
	}
	return capability
}

// KnownCapabilities returns the well-known capability namespaces in sorted order.
func KnownCapabilities() []string {
	return slices.Sorted(maps.Keys(capabilityNames))
}
