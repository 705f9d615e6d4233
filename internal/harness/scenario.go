package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a genealogy test scenario: a stem, the steps applied to
// a fresh genealogy rooted at it, and assertions on the final lineage.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name" json:"name" validate:"required"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description" validate:"required"`

	// Stem is the identifier of the root strain.
	Stem string `yaml:"stem" json:"stem" validate:"required,strainid"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps" json:"steps" validate:"min=1,dive"`

	// Assertions are evaluated against the genealogy after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty" validate:"dive"`
}

// Step is a single mutation of the genealogy.
type Step struct {
	// Op is create, connect or remove.
	Op string `yaml:"op" json:"op" validate:"required,oneof=create connect remove"`

	// ID is the strain being created, connected (as the child) or removed.
	ID string `yaml:"id" json:"id" validate:"required,strainid"`

	// Parents lists the parents for create, or the single parent for connect.
	Parents []string `yaml:"parents,omitempty" json:"parents,omitempty" validate:"dive,strainid"`

	// ExpectError names the failure this step must produce. Empty means the
	// step must succeed.
	ExpectError string `yaml:"expect_error,omitempty" json:"expect_error,omitempty" validate:"omitempty,oneof=not_found already_exists remove_stem"`
}

// Assertion checks the final genealogy.
type Assertion struct {
	// Type is one of exists, absent, parents, children, ancestors,
	// descendants, count, valid.
	Type string `yaml:"type" json:"type" validate:"required,oneof=exists absent parents children ancestors descendants count valid"`

	// ID is the strain inspected (every type but count and valid).
	ID string `yaml:"id,omitempty" json:"id,omitempty" validate:"omitempty,strainid"`

	// IDs is the expected strain set (parents, children, ancestors,
	// descendants). Order is ignored.
	IDs []string `yaml:"ids,omitempty" json:"ids,omitempty" validate:"dive,strainid"`

	// Count is the expected number of strains (count).
	Count *int `yaml:"count,omitempty" json:"count,omitempty" validate:"omitempty,min=0"`
}

// Step operations.
const (
	OpCreate  = "create"
	OpConnect = "connect"
	OpRemove  = "remove"
)

// Assertion type constants.
const (
	AssertExists   = "exists"
	AssertAbsent   = "absent"
	AssertParents  = "parents"
	AssertChildren = "children"
	AssertCount    = "count"
	AssertValid    = "valid"

	AssertAncestors   = "ancestors"
	AssertDescendants = "descendants"
)

// Scenario file extensions understood by LoadScenario.
var (
	YAMLExtensions = []string{".yaml", ".yml"}
	CUEExtension   = ".cue"
)

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == CUEExtension {
		return true
	}
	for _, e := range YAMLExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadScenario reads and parses a scenario file. The format follows the
// extension: .yaml and .yml are YAML, .cue is CUE.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields, or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == CUEExtension {
		return ParseCUE(path, data)
	}
	if !IsScenarioFile(path) {
		return nil, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}
	return ParseYAML(data)
}

// ParseYAML parses and validates a YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}
