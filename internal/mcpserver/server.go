// Package mcpserver exposes the naming pipeline as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/batch"
	"github.com/joseph-ayodele/docnamer/internal/category"
	"github.com/joseph-ayodele/docnamer/internal/pipeline"
)

const (
	ServerName = "docnamer"
	maxTextOut = 8000
)

// Deps are the components the tools run on.
type Deps struct {
	Suggester  batch.Suggester
	Text       pipeline.TextExtractor
	Classifier *category.Classifier
	// Rename overrides the rename used by suggest_filename; nil uses rename.IfAbsent.
	Rename batch.RenameFunc
	Logger *slog.Logger
}

// Server represents the MCP server instance
type Server struct {
	preview    *batch.Runner
	apply      *batch.Runner
	text       pipeline.TextExtractor
	classifier *category.Classifier
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(version string, deps Deps) (*Server, error) {
	if deps.Suggester == nil || deps.Text == nil {
		return nil, fmt.Errorf("suggester and text extractor are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := deps.Classifier
	if classifier == nil {
		classifier = category.NewClassifier(nil)
	}

	s := &Server{
		preview:    batch.NewRunner(deps.Suggester, logger),
		apply:      batch.NewRunner(deps.Suggester, logger, batch.WithExecute(true), batch.WithRenameFunc(deps.Rename)),
		text:       deps.Text,
		classifier: classifier,
		mcpServer: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(false),
		),
		logger: logger,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"suggest_filename",
		mcp.WithDescription("Suggest a descriptive filename (date_company_type_keywords_reference) for a document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document"),
		),
		mcp.WithBoolean("rename",
			mcp.Description("Rename the file to the suggestion; an existing file is never replaced"),
		),
	), s.handleSuggestFilename)

	s.mcpServer.AddTool(mcp.NewTool(
		"extract_text",
		mcp.WithDescription("Extract plain text from a document, using OCR for scans and images"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document"),
		),
	), s.handleExtractText)

	s.mcpServer.AddTool(mcp.NewTool(
		"classify_company",
		mcp.WithDescription("Map a company name to its filing category and folder"),
		mcp.WithString("company",
			mcp.Required(),
			mcp.Description("Company name, e.g. Vodafone"),
		),
	), s.handleClassifyCompany)

	s.mcpServer.AddTool(mcp.NewTool(
		"list_categories",
		mcp.WithDescription("List filing categories with their folder names"),
	), s.handleListCategories)
}

func (s *Server) handleSuggestFilename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doRename, _ := request.GetArguments()["rename"].(bool)

	runner := s.preview
	if doRename {
		runner = s.apply
	}
	sug := runner.One(ctx, path)
	if sug.Outcome == constants.OutcomeFailed {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", sug.OriginalName, sug.Err)), nil
	}
	return mcp.NewToolResultText(formatSuggestion(sug)), nil
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := s.text.Extract(ctx, path)
	if strings.TrimSpace(res.Text) == "" {
		msg := fmt.Sprintf("no text extracted from %s", path)
		if len(res.Warnings) > 0 {
			msg += ": " + strings.Join(res.Warnings, "; ")
		}
		return mcp.NewToolResultError(msg), nil
	}

	text := fmt.Sprintf("Method: %s\n", res.Method)
	if res.Pages > 0 {
		text += fmt.Sprintf("Pages: %d\n", res.Pages)
	}
	if len(res.Warnings) > 0 {
		text += fmt.Sprintf("Warnings: %s\n", strings.Join(res.Warnings, "; "))
	}
	body := res.Text
	if r := []rune(body); len(r) > maxTextOut {
		body = string(r[:maxTextOut]) + "\n[...]"
	}
	text += "\nContent:\n" + body
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleClassifyCompany(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	company, err := request.RequireString("company")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, ok := s.classifier.Classify(company)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No category for %q", company)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Category: %s\nFolder: %s", entry.Name, entry.Folder)), nil
}

func (s *Server) handleListCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, e := range s.classifier.Categories() {
		fmt.Fprintf(&b, "%s\t%s\n", e.Folder, e.Name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatSuggestion(s pipeline.Suggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original: %s\n", s.OriginalName)
	fmt.Fprintf(&b, "Suggestion: %s\n", s.Filename)
	fmt.Fprintf(&b, "Source: %s\n", s.Source)
	fmt.Fprintf(&b, "Outcome: %s\n", s.Outcome)
	if s.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", s.Reason)
	}
	if s.Category != "" {
		fmt.Fprintf(&b, "Category: %s (%s)\n", s.Category, s.Folder)
	}
	if m := s.Metadata; m != nil {
		fmt.Fprintf(&b, "Company: %s\nDocument type: %s\nConfidence: %.2f\n", m.Company, m.DocumentType, m.Confidence)
		if len(m.Keywords) > 0 {
			fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(m.Keywords, ", "))
		}
	}
	if len(s.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings: %s\n", strings.Join(s.Warnings, "; "))
	}
	return b.String()
}

// Run serves MCP over stdin/stdout until the client disconnects.
func (s *Server) Run(_ context.Context) error {
	s.logger.Info("mcp.stdio.start", "server", ServerName)
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
