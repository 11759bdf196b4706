package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mfenderov/oneweb-prep/pkg/models"
)

type fakeSearcher struct {
	docs     map[string]models.SectionDocument
	requests []models.SearchRequest
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, req models.SearchRequest) (*models.SearchResults, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	var docs []models.SectionDocument
	for _, d := range f.docs {
		docs = append(docs, d)
	}
	return &models.SearchResults{Documents: docs, Count: int64(len(docs))}, nil
}

func (f *fakeSearcher) GetDocument(_ context.Context, id string) (*models.SectionDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func newTestServer(t *testing.T, searcher *fakeSearcher) *Server {
	t.Helper()
	s, err := NewServer(Config{Name: "oneweb-prep", Version: "1.0.0"}, searcher)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func TestServer_Creation(t *testing.T) {
	s := newTestServer(t, &fakeSearcher{})
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}

	if _, err := NewServer(Config{}, nil); err == nil {
		t.Error("NewServer() without searcher should fail")
	}
}

func TestServer_SearchTool(t *testing.T) {
	searcher := &fakeSearcher{docs: map[string]models.SectionDocument{
		"=tax": {ID: "=tax", Name: "Tax", Category: "tax"},
	}}
	s := newTestServer(t, searcher)

	res, err := s.searchHandler(context.Background(), callRequest("search_sections", map[string]any{
		"query":    "income tax",
		"limit":    float64(5),
		"category": "tax",
	}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("searchHandler() returned tool error: %s", resultText(t, res))
	}

	var docs []models.SectionDocument
	if err := json.Unmarshal([]byte(resultText(t, res)), &docs); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "=tax" {
		t.Errorf("docs = %+v, want =tax", docs)
	}

	req := searcher.requests[0]
	if req.Query != "income tax" || req.Top != 5 {
		t.Errorf("request = %+v, want query and top 5", req)
	}
	if req.Filter == nil || req.Filter.Field != "category" || req.Filter.Value != "tax" {
		t.Errorf("filter = %+v, want category=tax", req.Filter)
	}
}

func TestServer_SearchToolDefaults(t *testing.T) {
	searcher := &fakeSearcher{}
	s := newTestServer(t, searcher)

	if _, err := s.searchHandler(context.Background(), callRequest("search_sections", map[string]any{"query": "x"})); err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	req := searcher.requests[0]
	if req.Top != defaultLimit || req.Filter != nil {
		t.Errorf("request = %+v, want default limit and no filter", req)
	}
}

func TestServer_SearchToolErrors(t *testing.T) {
	s := newTestServer(t, &fakeSearcher{err: errors.New("cluster down")})

	missing, _ := s.searchHandler(context.Background(), callRequest("search_sections", map[string]any{}))
	if !missing.IsError {
		t.Error("missing query should be a tool error")
	}

	failed, _ := s.searchHandler(context.Background(), callRequest("search_sections", map[string]any{"query": "x"}))
	if !failed.IsError {
		t.Error("backend failure should be a tool error")
	}
}

func TestServer_GetSectionTool(t *testing.T) {
	s := newTestServer(t, &fakeSearcher{docs: map[string]models.SectionDocument{
		"=a=b=html": {ID: "=a=b=html", Name: "B"},
	}})

	res, err := s.getSectionHandler(context.Background(), callRequest("get_section", map[string]any{"id": "=a=b=html"}))
	if err != nil {
		t.Fatalf("getSectionHandler() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("getSectionHandler() returned tool error: %s", resultText(t, res))
	}

	var doc models.SectionDocument
	if err := json.Unmarshal([]byte(resultText(t, res)), &doc); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if doc.Name != "B" {
		t.Errorf("Name = %q, want %q", doc.Name, "B")
	}

	notFound, _ := s.getSectionHandler(context.Background(), callRequest("get_section", map[string]any{"id": "=missing"}))
	if !notFound.IsError {
		t.Error("unknown id should be a tool error")
	}
}
