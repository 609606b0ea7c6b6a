// Command groundwork bootstraps agent-ready documentation and MCP
// configuration into a repository.
package main

import "github.com/groundwork-cli/groundwork/internal/cli"

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
