// Package mcp exposes the catalog query operations as a Model Context
// Protocol tool server using the official MCP Go SDK. One typed tool is
// registered per engine operation; input schemas are generated by the SDK
// from the handler argument structs.
//
// Defaults (limit 10, minimum discount 50%, 30-day recency window) are
// resolved here at the tool boundary, so the engine always receives fully
// explicit parameters. Result payloads keep prices in dollars and dates in
// Steam's display format, matching what the calling assistant shows users.
package mcp

// Transport selects how the tool server is exposed.
type Transport string

const (
	// TransportStdio serves a single session over stdin/stdout. This is
	// the mode assistant hosts spawn the binary in.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP serves the MCP Streamable HTTP protocol on
	// the ops listener.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}
