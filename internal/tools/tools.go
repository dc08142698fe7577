package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/decklab/rpc-manifest/internal/pipeline"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp     *mcp.Server
	version string
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(version string) *Server {
	srv := &Server{
		version: version,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "rpc-manifest",
				Version: version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	// 1. generate_manifest
	s.mcp.AddTool(&mcp.Tool{
		Name:        "generate_manifest",
		Description: "Run the RPC manifest generator against a TypeScript project. Scans service classes, validates endpoint names, and writes the versioned manifest when the project is clean. Returns the discovered endpoints and any diagnostics.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_root": {
					"type": "string",
					"description": "Absolute path of the TypeScript project root."
				}
			},
			"required": ["project_root"]
		}`),
	}, s.handleGenerateManifest)

	// 2. list_endpoints
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_endpoints",
		Description: "Scan a TypeScript project and list its RPC namespaces and endpoints without writing the manifest. Diagnostics are included but do not block the listing.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_root": {
					"type": "string",
					"description": "Absolute path of the TypeScript project root."
				}
			},
			"required": ["project_root"]
		}`),
	}, s.handleListEndpoints)
}

func (s *Server) handleGenerateManifest(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, res, err := s.runPipeline(ctx, req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	diags := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		diags = append(diags, d.String())
	}
	return jsonResult(map[string]any{
		"project":     root,
		"written":     res.Written,
		"cache_hit":   res.CacheHit,
		"out":         res.OutPath,
		"version":     res.Version,
		"services":    len(res.Services),
		"diagnostics": diags,
	}), nil
}

func (s *Server) handleListEndpoints(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, res, err := s.runPipeline(ctx, req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if res.CacheHit {
		return jsonResult(map[string]any{
			"cache_hit": true,
			"note":      "tree unchanged since last successful run; see the manifest on disk",
			"out":       res.OutPath,
		}), nil
	}

	namespaces := map[string][]string{}
	for _, svc := range res.Services {
		for _, m := range svc.Methods {
			namespaces[svc.Base] = append(namespaces[svc.Base], m.Endpoint)
		}
	}
	diags := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		diags = append(diags, d.String())
	}
	return jsonResult(map[string]any{
		"namespaces":  namespaces,
		"diagnostics": diags,
	}), nil
}

// runPipeline resolves the project_root argument and executes one run.
func (s *Server) runPipeline(ctx context.Context, req *mcp.CallToolRequest) (string, *pipeline.Result, error) {
	args, err := parseArgs(req)
	if err != nil {
		return "", nil, err
	}
	root := getStringArg(args, "project_root")
	if root == "" {
		return "", nil, fmt.Errorf("project_root is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", nil, fmt.Errorf("invalid path: %w", err)
	}

	p := pipeline.New(ctx, absRoot)
	defer p.Close()
	res, err := p.Run()
	if err != nil {
		return "", nil, fmt.Errorf("generation failed: %w", err)
	}
	return absRoot, res, nil
}

// jsonResult returns a tool result with pretty-printed JSON content.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params.Arguments == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
