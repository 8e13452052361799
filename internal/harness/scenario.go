package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/expo/internal/ir"
)

// Scenario defines one end-to-end sequencing run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Floor is the floor file (YAML or CUE) the run starts from.
	// LoadScenario resolves it relative to the scenario file.
	Floor string `yaml:"floor"`

	// Captain selects whose sequence the steps act on. May be omitted when
	// the floor has a single captain.
	Captain string `yaml:"captain,omitempty"`

	// Steps run in order against the captain's sequence.
	Steps []Step `yaml:"steps"`

	// Assertions validate the state left after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single operation on the sequence.
type Step struct {
	// Op is one of analyze, move or apply.
	Op string `yaml:"op"`

	// Unit and Direction drive move.
	Unit      string `yaml:"unit,omitempty"`
	Direction string `yaml:"direction,omitempty"`

	// Suggestion picks the first ranked suggestion of this type for apply.
	Suggestion string `yaml:"suggestion,omitempty"`

	// Index picks the ranked suggestion at this position for apply.
	Index *int `yaml:"index,omitempty"`

	// Tables makes apply build a suggestion of type Suggestion over these
	// ids instead of asking the analyzers.
	Tables []string `yaml:"tables,omitempty"`

	// ExpectError is the error code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpAnalyze = "analyze"
	OpMove    = "move"
	OpApply   = "apply"
)

// Assertion validates the final sequence, suggestions or store.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Sequence is the expected order (sequence_equals, stored_sequence).
	Sequence []string `yaml:"sequence,omitempty"`

	// Suggestion is the suggestion type (suggestion_count, no_suggestion).
	Suggestion string `yaml:"suggestion,omitempty"`

	// Count is the expected number of suggestions (suggestion_count).
	Count int `yaml:"count,omitempty"`

	// Tables must fire back to back (contiguous_block).
	Tables []string `yaml:"tables,omitempty"`

	// Start pins the first slot of the block (contiguous_block).
	Start *int `yaml:"start,omitempty"`

	// Revision is the expected store revision (stored_sequence); 0 skips it.
	Revision int64 `yaml:"revision,omitempty"`
}

// Assertion type constants.
const (
	AssertSequenceEquals  = "sequence_equals"
	AssertSuggestionCount = "suggestion_count"
	AssertNoSuggestion    = "no_suggestion"
	AssertContiguousBlock = "contiguous_block"
	AssertStoredSequence  = "stored_sequence"
)

// LoadScenario reads and parses a scenario YAML file, resolving the floor
// path relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// the floor path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Floor != "" && !filepath.IsAbs(scenario.Floor) && basePath != "" {
		scenario.Floor = filepath.Join(basePath, scenario.Floor)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Floor == "" {
		return fmt.Errorf("floor is required")
	}
	if _, err := os.Stat(s.Floor); os.IsNotExist(err) {
		return fmt.Errorf("floor file not found: %s", s.Floor)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpAnalyze:
	case OpMove:
		if st.Unit == "" {
			return fmt.Errorf("steps[%d]: unit is required for move", index)
		}
		if _, err := ir.ParseDirection(st.Direction); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpApply:
		if st.Suggestion == "" && st.Index == nil {
			return fmt.Errorf("steps[%d]: apply needs suggestion or index", index)
		}
		if st.Suggestion != "" {
			if _, err := ir.ParseSuggestionType(st.Suggestion); err != nil {
				return fmt.Errorf("steps[%d]: %w", index, err)
			}
		}
		if st.Index != nil && *st.Index < 0 {
			return fmt.Errorf("steps[%d]: index must be non-negative", index)
		}
		if len(st.Tables) > 0 && st.Suggestion == "" {
			return fmt.Errorf("steps[%d]: tables requires suggestion", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSequenceEquals:
		if len(a.Sequence) == 0 {
			return fmt.Errorf("assertions[%d]: sequence is required for sequence_equals", index)
		}
	case AssertSuggestionCount, AssertNoSuggestion:
		if _, err := ir.ParseSuggestionType(a.Suggestion); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertContiguousBlock:
		if len(a.Tables) == 0 {
			return fmt.Errorf("assertions[%d]: tables is required for contiguous_block", index)
		}
	case AssertStoredSequence:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
