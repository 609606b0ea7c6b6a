package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/groundwork-cli/groundwork/internal/logging"
)

// Scanner performs non-invasive project discovery: it reads well-known build
// and manifest files but never executes project code.
type Scanner struct {
	logger zerolog.Logger
}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{logger: logging.Component("analysis")}
}

// Scan discovers facts about the project rooted at dir. Individual probe
// failures are logged and skipped; only an unusable root is an error.
func (s *Scanner) Scan(dir string) (*Facts, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("project directory is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat project directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", abs)
	}

	facts := &Facts{}
	facts.Project.Name = filepath.Base(abs)

	s.scanGo(abs, facts)
	s.scanNode(abs, facts)
	s.scanPython(abs, facts)
	s.scanRust(abs, facts)
	s.scanMakefile(abs, facts)
	s.scanDocs(abs, facts)
	s.scanGit(abs, facts)

	if len(facts.Project.Languages) > 0 {
		facts.Project.Language = facts.Project.Languages[0]
	}

	s.logger.Debug().
		Str("dir", abs).
		Str("name", facts.Project.Name).
		Strs("languages", facts.Project.Languages).
		Msg("project scan complete")

	return facts, nil
}

func (s *Scanner) scanGo(dir string, facts *Facts) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			facts.Project.Module = strings.TrimSpace(strings.TrimPrefix(line, "module "))
			break
		}
	}

	facts.Project.Languages = append(facts.Project.Languages, "go")
	if facts.Project.Module != "" {
		facts.Project.Name = filepath.Base(facts.Project.Module)
	}
	setIfEmpty(&facts.Commands.Build, "go build ./...")
	setIfEmpty(&facts.Commands.Test, "go test ./...")
	setIfEmpty(&facts.Commands.Lint, "go vet ./...")
}

func (s *Scanner) scanNode(dir string, facts *Facts) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return
	}

	var manifest struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		s.logger.Debug().Err(err).Msg("skipping unparsable package.json")
		return
	}

	language := "javascript"
	if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err == nil {
		language = "typescript"
	}
	facts.Project.Languages = append(facts.Project.Languages, language)

	if manifest.Name != "" && facts.Project.Module == "" {
		facts.Project.Name = manifest.Name
	}
	if _, ok := manifest.Scripts["build"]; ok {
		setIfEmpty(&facts.Commands.Build, "npm run build")
	}
	if _, ok := manifest.Scripts["test"]; ok {
		setIfEmpty(&facts.Commands.Test, "npm test")
	}
	if _, ok := manifest.Scripts["lint"]; ok {
		setIfEmpty(&facts.Commands.Lint, "npm run lint")
	}
	if _, ok := manifest.Scripts["start"]; ok {
		setIfEmpty(&facts.Commands.Run, "npm start")
	}
}

func (s *Scanner) scanPython(dir string, facts *Facts) {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return
	}

	var manifest struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		s.logger.Debug().Err(err).Msg("skipping unparsable pyproject.toml")
		return
	}

	facts.Project.Languages = append(facts.Project.Languages, "python")
	name := manifest.Project.Name
	if name == "" {
		name = manifest.Tool.Poetry.Name
	}
	if name != "" && len(facts.Project.Languages) == 1 {
		facts.Project.Name = name
	}
}

func (s *Scanner) scanRust(dir string, facts *Facts) {
	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return
	}

	var manifest struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		s.logger.Debug().Err(err).Msg("skipping unparsable Cargo.toml")
		return
	}

	facts.Project.Languages = append(facts.Project.Languages, "rust")
	if manifest.Package.Name != "" && len(facts.Project.Languages) == 1 {
		facts.Project.Name = manifest.Package.Name
	}
	setIfEmpty(&facts.Commands.Build, "cargo build")
	setIfEmpty(&facts.Commands.Test, "cargo test")
}

// scanMakefile lets explicit make targets take precedence over the language
// defaults already filled in.
func (s *Scanner) scanMakefile(dir string, facts *Facts) {
	file, err := os.Open(filepath.Join(dir, "Makefile"))
	if err != nil {
		return
	}
	defer file.Close()

	targets := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, ".") || strings.HasPrefix(line, "#") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		if name != "" && !strings.ContainsAny(name, " \t$=") {
			targets[name] = true
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Debug().Err(err).Msg("skipping unreadable Makefile")
		return
	}

	if targets["build"] {
		facts.Commands.Build = "make build"
	}
	if targets["test"] {
		facts.Commands.Test = "make test"
	}
	if targets["lint"] {
		facts.Commands.Lint = "make lint"
	}
	if targets["run"] {
		facts.Commands.Run = "make run"
	}
}

func (s *Scanner) scanDocs(dir string, facts *Facts) {
	for _, candidate := range []string{"docs", "doc"} {
		if isDir(filepath.Join(dir, candidate)) {
			facts.Paths.Docs = candidate
			break
		}
	}
	for _, candidate := range []string{"docs/adr", "docs/decisions", "doc/adr", "adr"} {
		if isDir(filepath.Join(dir, filepath.FromSlash(candidate))) {
			facts.Paths.ADR = candidate
			break
		}
	}
}

func (s *Scanner) scanGit(dir string, facts *Facts) {
	data, err := os.ReadFile(filepath.Join(dir, ".git", "HEAD"))
	if err != nil {
		return
	}

	head := strings.TrimSpace(string(data))
	if strings.HasPrefix(head, "ref: refs/heads/") {
		facts.VCS.Branch = strings.TrimPrefix(head, "ref: refs/heads/")
	}
}

func setIfEmpty(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
