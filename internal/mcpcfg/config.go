// Package mcpcfg manages the project's Model Context Protocol server
// configuration (.mcp.json) and provides verification of configured servers.
package mcpcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfigFileName is the conventional MCP config file at the project root.
const ConfigFileName = ".mcp.json"

// Server transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config errors.
var (
	ErrServerNotFound = errors.New("mcp server not found")
	ErrInvalidServer  = errors.New("invalid mcp server")
)

// Server describes one configured MCP server.
type Server struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
}

// Transport returns the effective transport, defaulting by shape: a URL
// implies HTTP, a command implies stdio.
func (s Server) Transport() string {
	if s.Type != "" {
		return s.Type
	}
	if s.URL != "" {
		return TransportHTTP
	}
	return TransportStdio
}

// Validate checks the server entry for a usable shape.
func (s Server) Validate() error {
	switch s.Transport() {
	case TransportStdio:
		if strings.TrimSpace(s.Command) == "" {
			return fmt.Errorf("%w: stdio server requires a command", ErrInvalidServer)
		}
	case TransportSSE, TransportHTTP:
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("%w: %s server requires a url", ErrInvalidServer, s.Transport())
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidServer, s.Type)
	}
	return nil
}

// Config is the .mcp.json document.
type Config struct {
	Servers map[string]Server `json:"mcpServers"`
}

// LoadConfig reads the MCP config at path. A missing file yields an empty
// config rather than an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{Servers: map[string]Server{}}, nil
		}
		return nil, fmt.Errorf("read mcp config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config %s: %w", path, err)
	}
	if cfg.Servers == nil {
		cfg.Servers = map[string]Server{}
	}
	return &cfg, nil
}

// SaveConfig writes the config atomically with stable key order.
func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mcp config: %w", err)
	}
	data = append(data, '\n')

	tmp := filepath.Join(filepath.Dir(path), ".mcp.json.tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write mcp config %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write mcp config %s: %w", path, err)
	}
	return nil
}

// Add upserts a server entry. The second return reports whether an existing
// entry was replaced.
func (c *Config) Add(name string, server Server) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("%w: name is required", ErrInvalidServer)
	}
	if err := server.Validate(); err != nil {
		return false, err
	}

	_, replaced := c.Servers[name]
	c.Servers[name] = server
	return replaced, nil
}

// Remove deletes a server entry.
func (c *Config) Remove(name string) error {
	if _, ok := c.Servers[name]; !ok {
		return fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}
	delete(c.Servers, name)
	return nil
}

// Get returns a named server entry.
func (c *Config) Get(name string) (Server, error) {
	server, ok := c.Servers[name]
	if !ok {
		return Server{}, fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}
	return server, nil
}

// Names returns the configured server names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
