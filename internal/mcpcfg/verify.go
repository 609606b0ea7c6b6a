package mcpcfg

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrUnsupportedTransport marks verification attempts against non-stdio
// servers, which would require a live network endpoint.
var ErrUnsupportedTransport = errors.New("verification supports only stdio servers")

// ToolInfo is one tool advertised by a verified server.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// VerifyReport is the outcome of a successful server handshake.
type VerifyReport struct {
	ServerName      string     `json:"serverName"`
	ServerVersion   string     `json:"serverVersion"`
	ProtocolVersion string     `json:"protocolVersion"`
	Tools           []ToolInfo `json:"tools"`
}

// Verify launches a configured stdio server, performs the MCP initialize
// handshake, and lists the tools it advertises.
func Verify(ctx context.Context, name string, server Server) (*VerifyReport, error) {
	if err := server.Validate(); err != nil {
		return nil, err
	}
	if server.Transport() != TransportStdio {
		return nil, fmt.Errorf("%w: %s uses %s", ErrUnsupportedTransport, name, server.Transport())
	}

	env := make([]string, 0, len(server.Env))
	for key, value := range server.Env {
		env = append(env, key+"="+value)
	}
	sort.Strings(env)

	c, err := client.NewStdioMCPClient(server.Command, env, server.Args...)
	if err != nil {
		return nil, fmt.Errorf("start mcp server %s: %w", name, err)
	}
	defer c.Close()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "groundwork",
		Version: "verify",
	}

	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		return nil, fmt.Errorf("initialize mcp server %s: %w", name, err)
	}

	report := &VerifyReport{
		ServerName:      initResult.ServerInfo.Name,
		ServerVersion:   initResult.ServerInfo.Version,
		ProtocolVersion: initResult.ProtocolVersion,
	}

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools on mcp server %s: %w", name, err)
	}
	for _, tool := range tools.Tools {
		report.Tools = append(report.Tools, ToolInfo{
			Name:        tool.Name,
			Description: tool.Description,
		})
	}

	return report, nil
}
