package api

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
	"github.com/hazyhaar/notice-registry/pkg/kit"
	"github.com/hazyhaar/notice-registry/pkg/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the notice MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, p *pipeline.Pipeline, n *datenorm.Normalizer) {
	registerExtractNotices(srv, p)
	registerNormalizeDate(srv, n)
}

func registerExtractNotices(srv *server.MCPServer, p *pipeline.Pipeline) {
	tool := mcp.NewTool("extract_notices",
		mcp.WithDescription("Split text pasted from the INHA dictionary of art historians into biography records and extract name, life span, notice author, profession, other activities and study subjects."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Pasted notice text, one or several notices")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (0 = all)")),
		mcp.WithBoolean("single", mcp.Description("Treat the whole text as one notice")),
		mcp.WithBoolean("normalize_dates", mcp.Description("Rewrite parseable dates as DD/MM/YYYY")),
	)

	kit.RegisterMCPTool(srv, tool, extractEndpoint(p), decodeExtractArgs)
}

func decodeExtractArgs(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	text, _ := args["text"].(string)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	r := &extractReq{Text: text}
	if v, ok := args["limit"].(float64); ok {
		r.Limit = int(v)
	}
	if v, ok := args["single"].(bool); ok {
		r.Single = v
	}
	if v, ok := args["normalize_dates"].(bool); ok {
		r.NormalizeDates = &v
	}
	return &kit.MCPDecodeResult{Request: r}, nil
}

func registerNormalizeDate(srv *server.MCPServer, n *datenorm.Normalizer) {
	tool := mcp.NewTool("normalize_date",
		mcp.WithDescription("Normalize French or English date expressions (\"26 février 1781\", \"1er mars 1900\") to DD/MM/YYYY."),
		mcp.WithString("values", mcp.Required(), mcp.Description("Date expressions separated by newlines or semicolons")),
		mcp.WithString("policy", mcp.Description("On failure: passthrough (default) returns the input, sentinel returns DATE_INVALID")),
	)

	kit.RegisterMCPTool(srv, tool, normalizeDatesEndpoint(n), decodeNormalizeArgs)
}

func decodeNormalizeArgs(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	raw, _ := args["values"].(string)
	var values []string
	for _, v := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ';' }) {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("values is required")
	}
	policy, _ := args["policy"].(string)
	return &kit.MCPDecodeResult{Request: &normalizeReq{Values: values, Policy: policy}}, nil
}
