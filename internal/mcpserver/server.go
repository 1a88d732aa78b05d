// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes lab journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/labjournal/internal/apperr"
	"github.com/starford/labjournal/internal/checksum"
	"github.com/starford/labjournal/internal/index"
	"github.com/starford/labjournal/internal/journal"
	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/scaffold"
	"github.com/starford/labjournal/internal/storage"
)

const formatURI = "lab-journal://experiment-format"

// Server wraps the MCP server with lab journal tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	svc   *journal.Service
}

// New creates a new MCP server with all journal tools registered.
func New(store storage.Provider, svc *journal.Service) *Server {
	s := &Server{store: store, svc: svc}

	s.mcp = server.NewMCPServer(
		"lab-journal",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("build_index",
		mcp.WithDescription("Rebuild index.json from every experiment document."),
	), s.buildIndex)

	s.mcp.AddTool(mcp.NewTool("get_index",
		mcp.WithDescription("Return the journal index as JSON, built fresh from the documents."),
	), s.getIndex)

	s.mcp.AddTool(mcp.NewTool("new_experiment",
		mcp.WithDescription("Scaffold a new experiment document with the next id. "+
			"Read the format via get_experiment_format or the "+formatURI+" resource first."),
		mcp.WithString("slug", mcp.Description("Short kebab-case name (default untitled)")),
		mcp.WithString("type", mcp.Description("Experiment type"),
			mcp.Enum(models.TypeHypothesis, models.TypeOptimization, models.TypeExploration)),
		mcp.WithArray("depends_on", mcp.Description("Ids of prerequisite experiments"), mcp.WithStringItems()),
	), s.newExperiment)

	s.mcp.AddTool(mcp.NewTool("show_experiment",
		mcp.WithDescription("Return one indexed experiment record as JSON, including leads_to."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Experiment id, e.g. 007")),
	), s.showExperiment)

	s.mcp.AddTool(mcp.NewTool("read_experiment",
		mcp.WithDescription("Read the full Markdown document of an experiment."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Experiment id, e.g. 007")),
	), s.readExperiment)

	s.mcp.AddTool(mcp.NewTool("search_experiments",
		mcp.WithDescription("Full-text search over experiment titles, bodies and tags. "+
			"An empty query lists experiments matching the filters."),
		mcp.WithString("query", mcp.Description("Search query string")),
		mcp.WithString("status", mcp.Description("Only experiments with this status")),
		mcp.WithString("type", mcp.Description("Only experiments of this type")),
		mcp.WithString("tag", mcp.Description("Only experiments carrying this tag")),
	), s.searchExperiments)

	s.mcp.AddTool(mcp.NewTool("list_experiments",
		mcp.WithDescription("List experiment document files with their checksums."),
	), s.listExperiments)

	s.mcp.AddTool(mcp.NewTool("get_experiment_format",
		mcp.WithDescription("Returns the experiment document format. "+
			"Call this before editing experiment frontmatter."),
	), s.getExperimentFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Experiment Format",
			mcp.WithResourceDescription("Frontmatter and body layout of an experiment document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) buildIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := s.svc.BuildIndex(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("indexed %d experiments: %s", len(idx.Experiments), s.svc.IndexPath())), nil
}

func (s *Server) getIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := s.svc.Index(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := index.Encode(idx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) newExperiment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := scaffold.Params{
		Slug:      req.GetString("slug", ""),
		Type:      req.GetString("type", ""),
		DependsOn: req.GetStringSlice("depends_on", nil),
	}
	path, err := s.svc.NewExperiment(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) showExperiment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.svc.Show(ctx, id)
	if err != nil {
		return notFoundOr(id, err), nil
	}
	out, _ := json.MarshalIndent(e, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readExperiment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.ReadDocument(ctx, id)
	if err != nil {
		return notFoundOr(id, err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchExperiments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := index.Filter{
		Status: req.GetString("status", ""),
		Type:   req.GetString("type", ""),
		Tag:    req.GetString("tag", ""),
	}
	results, err := s.svc.Search(ctx, req.GetString("query", ""), filter, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listExperiments(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.store.List(storage.ExperimentsDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(metas))
	for _, m := range metas {
		data, err := s.store.Read(m.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lines = append(lines, m.Name+"\t"+checksum.Sum(data))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getExperimentFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ExperimentFormat), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ExperimentFormat,
		},
	}, nil
}

func notFoundOr(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id))
	}
	return mcp.NewToolResultError(err.Error())
}
