package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned when an analysis file has an extension
// other than .json, .yaml, or .yml.
var ErrUnsupportedFormat = errors.New("unsupported analysis file format")

// LoadFile reads a prepared analysis record from a JSON or YAML file. The
// record may be any JSON-like shape; it is returned as the raw mapping so it
// can be merged over scanned facts.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis file %s: %w", path, err)
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse analysis file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse analysis file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	mapping, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("analysis file %s: top level must be a mapping", path)
	}
	return mapping, nil
}
