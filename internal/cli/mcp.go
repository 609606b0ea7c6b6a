// Package cli provides MCP server configuration commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/mcpcfg"
)

var (
	mcpDir string

	// mcp add flags
	mcpAddCommand   string
	mcpAddArgs      []string
	mcpAddEnv       []string
	mcpAddURL       string
	mcpAddTransport string

	// mcp verify flags
	mcpVerifyTimeout time.Duration

	// mcp serve flags
	mcpServeContextFiles []string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpListCmd)
	mcpCmd.AddCommand(mcpAddCmd)
	mcpCmd.AddCommand(mcpRemoveCmd)
	mcpCmd.AddCommand(mcpVerifyCmd)
	mcpCmd.AddCommand(mcpServeCmd)

	mcpCmd.PersistentFlags().StringVar(&mcpDir, "dir", ".", "project directory containing .mcp.json")

	mcpAddCmd.Flags().StringVar(&mcpAddCommand, "command", "", "command to launch a stdio server")
	mcpAddCmd.Flags().StringArrayVar(&mcpAddArgs, "arg", nil, "argument for the server command; repeatable")
	mcpAddCmd.Flags().StringArrayVar(&mcpAddEnv, "env", nil, "KEY=VALUE for the server environment; repeatable")
	mcpAddCmd.Flags().StringVar(&mcpAddURL, "url", "", "endpoint for an sse or http server")
	mcpAddCmd.Flags().StringVar(&mcpAddTransport, "transport", "", "transport: stdio, sse, or http (default: inferred)")

	mcpVerifyCmd.Flags().DurationVar(&mcpVerifyTimeout, "timeout", 30*time.Second, "handshake timeout")

	mcpServeCmd.Flags().StringArrayVar(&mcpServeContextFiles, "context", nil, "extra context file (YAML or JSON); repeatable, later files win")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage the project's MCP server configuration",
	Long: `Manage the Model Context Protocol servers configured in .mcp.json.

The file lives at the project root and is picked up by MCP-aware coding
assistants. "verify" launches a configured stdio server and checks its
handshake; "serve" exposes groundwork's own template catalogue over MCP.`,
}

func mcpConfigPath() string {
	return filepath.Join(mcpDir, mcpcfg.ConfigFileName)
}

var mcpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured MCP servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := mcpcfg.LoadConfig(mcpConfigPath())
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return WriteOutput(os.Stdout, config)
		}

		names := config.Names()
		if len(names) == 0 {
			fmt.Println("No MCP servers configured")
			return nil
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			server := config.Servers[name]
			target := server.Command
			if len(server.Args) > 0 {
				target += " " + strings.Join(server.Args, " ")
			}
			if server.URL != "" {
				target = server.URL
			}
			rows = append(rows, []string{name, server.Transport(), target})
		}
		return writeTable(os.Stdout, []string{"NAME", "TRANSPORT", "TARGET"}, rows)
	},
}

var mcpAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update an MCP server entry",
	Example: `  # Register a local stdio server
  groundwork mcp add linter --command lint-mcp --arg --stdio

  # Register groundwork's own template server
  groundwork mcp add groundwork --command groundwork --arg mcp --arg serve`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env := make(map[string]string, len(mcpAddEnv))
		for _, pair := range mcpAddEnv {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid --env %q: expected KEY=VALUE", pair)
			}
			env[key] = value
		}

		server := mcpcfg.Server{
			Type:    mcpAddTransport,
			Command: mcpAddCommand,
			Args:    mcpAddArgs,
			URL:     mcpAddURL,
		}
		if len(env) > 0 {
			server.Env = env
		}

		path := mcpConfigPath()
		config, err := mcpcfg.LoadConfig(path)
		if err != nil {
			return err
		}

		replaced, err := config.Add(args[0], server)
		if err != nil {
			return err
		}
		if err := mcpcfg.SaveConfig(path, config); err != nil {
			return err
		}

		if replaced {
			fmt.Printf("Updated MCP server %q in %s\n", args[0], path)
		} else {
			fmt.Printf("Added MCP server %q to %s\n", args[0], path)
		}
		return nil
	},
}

var mcpRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an MCP server entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := mcpConfigPath()
		config, err := mcpcfg.LoadConfig(path)
		if err != nil {
			return err
		}
		if err := config.Remove(args[0]); err != nil {
			return err
		}
		if err := mcpcfg.SaveConfig(path, config); err != nil {
			return err
		}

		fmt.Printf("Removed MCP server %q from %s\n", args[0], path)
		return nil
	},
}

var mcpVerifyCmd = &cobra.Command{
	Use:   "verify <name>",
	Short: "Launch a configured server and check its handshake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := mcpcfg.LoadConfig(mcpConfigPath())
		if err != nil {
			return err
		}
		server, err := config.Get(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), mcpVerifyTimeout)
		defer cancel()

		step := startProgress("Verifying " + args[0])
		report, err := mcpcfg.Verify(ctx, args[0], server)
		if err != nil {
			step.Fail(err)
			return err
		}
		step.Done()

		if IsJSONOutput() {
			return WriteOutput(os.Stdout, report)
		}

		fmt.Printf("%s %s\n", styled(successStyle, "ok:"), args[0])
		fmt.Printf("  Server:   %s %s\n", report.ServerName, report.ServerVersion)
		fmt.Printf("  Protocol: %s\n", report.ProtocolVersion)
		if len(report.Tools) == 0 {
			fmt.Println("  Tools:    (none advertised)")
			return nil
		}

		rows := make([][]string, 0, len(report.Tools))
		for _, tool := range report.Tools {
			rows = append(rows, []string{tool.Name, tool.Description})
		}
		fmt.Println()
		return writeTable(os.Stdout, []string{"TOOL", "DESCRIPTION"}, rows)
	},
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the template catalogue over MCP on stdio",
	Long: `Expose groundwork's template catalogue as an MCP server on stdin/stdout.

Assistants connected to this server can list the available templates and
render them against the analyzed project context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(mcpDir)
		if err != nil {
			return fmt.Errorf("resolve project directory: %w", err)
		}

		value, _, err := buildContext(dir, mcpServeContextFiles)
		if err != nil {
			return err
		}
		catalogue, err := loadCatalogue(dir)
		if err != nil {
			return err
		}

		return mcpcfg.NewTemplateServer(Version, catalogue, value).Serve()
	},
}
