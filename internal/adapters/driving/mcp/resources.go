package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sercha-notes resources.
	uriScheme = "sercha-notes://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Every indexed note with its status",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// The path segment is the URL-escaped file path of the note.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "notes/{path}",
		Name:        "note-content",
		Description: "Stored content of an indexed note",
		MIMEType:    "text/plain",
	}, s.handleNoteResource)
}

// handleDocumentsResource lists indexed documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	text := "[]"
	if s.ports.Indexing != nil {
		docs, err := s.ports.Indexing.ListDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}

		type docInfo struct {
			FilePath string                 `json:"file_path"`
			Title    string                 `json:"title"`
			Status   domain.EmbeddingStatus `json:"status"`
			Model    string                 `json:"model,omitempty"`
		}
		infos := make([]docInfo, len(docs))
		for i := range docs {
			infos[i] = docInfo{
				FilePath: docs[i].FilePath,
				Title:    docs[i].Title,
				Status:   docs[i].EmbeddingStatus,
				Model:    docs[i].EmbeddingModel,
			}
		}

		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling documents: %w", err)
		}
		text = string(data)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}

// handleNoteResource returns the stored content of one note.
func (s *Server) handleNoteResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Indexing == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	path := extractNotePath(req.Params.URI)
	if path == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Indexing.GetDocument(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

// extractNotePath extracts the file path from a URI like sercha-notes://notes/{path}.
func extractNotePath(uri string) string {
	const prefix = uriScheme + "notes/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	path, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return path
}

// NoteURI returns the resource URI for the note at path.
func NoteURI(path string) string {
	return uriScheme + "notes/" + url.PathEscape(path)
}
