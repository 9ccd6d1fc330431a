package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/avezina/propdocs/internal/core/domain"
)

func (s *Server) registerTools() {
	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Semantic search over processed property documents. Returns ranked hits with extracted metadata."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language search query."),
		),
		mcp.WithString("doc_type",
			mcp.Description("Restrict hits to one type: invoice, insurance or id."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum hits to return (default 5, capped at 50)."),
		),
	)
	s.mcp.AddTool(searchTool, s.handleSearchDocuments)

	listTool := mcp.NewTool("list_records",
		mcp.WithDescription("List extracted entity records of one document type, newest first."),
		mcp.WithString("doc_type",
			mcp.Required(),
			mcp.Description("Record type: invoice, insurance or id."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default 50, capped at 200)."),
		),
	)
	s.mcp.AddTool(listTool, s.handleListRecords)
}

func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var filter domain.SearchFilter
	if raw := request.GetString("doc_type", ""); raw != "" {
		docType, ok := domain.ParseDocumentType(raw)
		if !ok || !docType.Known() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown doc_type %q", raw)), nil
		}
		filter.Type = docType
	}

	hits, err := s.search.Search(ctx, query, request.GetInt("limit", 0), filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "search_documents tool failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"hits": hits, "count": len(hits)})
}

func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("doc_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docType, ok := domain.ParseDocumentType(raw)
	if !ok || !docType.Known() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown doc_type %q", raw)), nil
	}

	records, err := s.records.List(ctx, docType, request.GetInt("limit", 0), 0)
	if err != nil {
		s.logger.ErrorContext(ctx, "list_records tool failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"records": records, "count": len(records)})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
