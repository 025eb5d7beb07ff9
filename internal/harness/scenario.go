package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/confql/internal/document"
	"github.com/roach88/confql/internal/ir"
)

// Scenario defines one resolution test: a tree, a schema and queries.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Layout overrides the document layout.
	Layout *LayoutSpec `yaml:"layout,omitempty"`

	// Schema is CUE source declaring the types and the query type.
	Schema string `yaml:"schema"`

	// Files maps slash-separated paths to document contents.
	Files map[string]string `yaml:"files"`

	// Queries are resolved in order.
	Queries []Query `yaml:"queries"`
}

// LayoutSpec is the YAML form of document.Layout.
type LayoutSpec struct {
	Index      string   `yaml:"index"`
	Extensions []string `yaml:"extensions"`
}

// Query is one resolution with its expected outcome.
type Query struct {
	// Address is dotted ("things.widget"). Empty is the root.
	Address string `yaml:"address"`

	// Type is a type reference ("[Thing!]!") overriding the schema lookup.
	Type string `yaml:"type,omitempty"`

	// Expect is the expected value. A zero node means no expectation;
	// an explicit null expects Null.
	Expect yaml.Node `yaml:"expect,omitempty"`

	// ExpectError is the expected ir.ErrorCode.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// HasExpect reports whether the query declares an expected value.
func (q *Query) HasExpect() bool {
	return q.Expect.Kind != 0
}

// ExpectedValue converts Expect to a Value.
func (q *Query) ExpectedValue() (ir.Value, error) {
	return document.FromYAMLNode(&q.Expect)
}

// DocumentLayout returns the scenario's document layout, normalized.
func (s *Scenario) DocumentLayout() document.Layout {
	if s.Layout == nil {
		return document.DefaultLayout()
	}
	return document.Layout{
		IndexName:  s.Layout.Index,
		Extensions: s.Layout.Extensions,
	}.Normalize()
}

// FileNames returns the scenario's file paths, sorted.
func (s *Scenario) FileNames() []string {
	names := make([]string, 0, len(s.Files))
	for name := range s.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "query:" vs "queries:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns every .yaml and .yml file under dir, sorted.
// When filter is set only files whose name (without extension) matches
// the glob are returned.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain spaces or path separators", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if strings.TrimSpace(s.Schema) == "" {
		return fmt.Errorf("schema is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for name := range s.Files {
		if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
			return fmt.Errorf("files: invalid path %q", name)
		}
	}

	for i, q := range s.Queries {
		if q.HasExpect() && q.ExpectError != "" {
			return fmt.Errorf("queries[%d]: expect and expect_error are mutually exclusive", i)
		}
	}
	return nil
}
