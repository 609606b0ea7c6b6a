package mcpcfg

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/groundwork-cli/groundwork/internal/logging"
	"github.com/groundwork-cli/groundwork/internal/resolve"
	"github.com/groundwork-cli/groundwork/internal/templates"
)

// TemplateServer exposes the template catalogue over MCP so assistants can
// inspect and render project scaffolding without shelling out.
type TemplateServer struct {
	server    *server.MCPServer
	catalogue []*templates.Template
	context   resolve.Value
}

// NewTemplateServer builds the MCP server for a loaded catalogue and a
// resolution context produced by project analysis.
func NewTemplateServer(version string, catalogue []*templates.Template, ctx resolve.Value) *TemplateServer {
	s := &TemplateServer{
		server: server.NewMCPServer(
			"groundwork",
			version,
			server.WithToolCapabilities(true),
		),
		catalogue: catalogue,
		context:   ctx,
	}
	s.registerTools()
	return s
}

func (s *TemplateServer) registerTools() {
	listTool := mcp.NewTool("list_templates",
		mcp.WithDescription("List the available documentation templates with their output paths"),
	)
	s.server.AddTool(listTool, s.handleListTemplates)

	renderTool := mcp.NewTool("render_template",
		mcp.WithDescription("Render a named template against the analyzed project context"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template name as reported by list_templates"),
		),
		mcp.WithString("fallback",
			mcp.Description("Replacement text for placeholders that cannot be resolved"),
		),
	)
	s.server.AddTool(renderTool, s.handleRenderTemplate)
}

func (s *TemplateServer) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, tmpl := range s.catalogue {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", tmpl.Name, tmpl.Output, tmpl.Description)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no templates available"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *TemplateServer) handleRenderTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tmpl, err := templates.ByName(s.catalogue, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var opts []resolve.Option
	if fallback := request.GetString("fallback", ""); fallback != "" {
		opts = append(opts, resolve.WithFallback(fallback))
	}

	result, err := templates.RenderTemplate(tmpl, s.context, opts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render %s: %v", name, err)), nil
	}

	out := result.Output
	if len(result.Warnings) > 0 {
		var b strings.Builder
		b.WriteString(out)
		b.WriteString("\n---\nwarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- line %d: %s\n", w.Line, w.Message)
		}
		out = b.String()
	}
	return mcp.NewToolResultText(out), nil
}

// Serve runs the template server on stdin/stdout until the client
// disconnects.
func (s *TemplateServer) Serve() error {
	logger := logging.Component("mcp")
	logger.Info().Int("templates", len(s.catalogue)).Msg("serving template catalogue over stdio")

	if err := server.ServeStdio(s.server); err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}
