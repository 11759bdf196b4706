package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mfenderov/oneweb-prep/pkg/models"
)

const defaultLimit = 10

// Searcher is the read side of the sections index.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResults, error)
	GetDocument(ctx context.Context, id string) (*models.SectionDocument, error)
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Server exposes the sections index as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	searcher  Searcher
}

// NewServer creates a new MCP server with the section tools registered.
func NewServer(config Config, searcher Searcher) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		searcher:  searcher,
	}

	searchTool := mcp.NewTool("search_sections",
		mcp.WithDescription("Search indexed product sections by query. Returns the section abstract as HTML with its name, geography and source page."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
		mcp.WithString("category",
			mcp.Description("Only return sections of this category"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	getTool := mcp.NewTool("get_section",
		mcp.WithDescription("Get a specific section by ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Section ID to retrieve"),
		),
	)
	mcpServer.AddTool(getTool, s.getSectionHandler)

	return s, nil
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	sr := models.SearchRequest{
		Query: query,
		Top:   req.GetInt("limit", defaultLimit),
	}
	if category := req.GetString("category", ""); category != "" {
		sr.Filter = &models.TermFilter{Field: "category", Value: category}
	}

	results, err := s.searcher.Search(ctx, sr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	out, err := json.Marshal(results.Documents)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getSectionHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	doc, err := s.searcher.GetDocument(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get section failed: %v", err)), nil
	}
	if doc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("section not found: %s", id)), nil
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal section: %v", err)), nil
	}

	return mcp.NewToolResultText(string(out)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
