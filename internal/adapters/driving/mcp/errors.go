// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-notes.
// It lets AI assistants search and index the local note collection.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrIndexingUnavailable is returned by index_note when no indexing port is wired.
var ErrIndexingUnavailable = errors.New("mcp: indexing is not available")
