package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/expo/internal/ir"
)

// GoldenDir is the directory, next to the scenario files, that holds golden
// traces.
const GoldenDir = "golden"

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Captain      string       `json:"captain"`
	Trace        []TraceEvent `json:"trace"`
}

// NewSnapshot builds the snapshot of a finished run.
func NewSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenario.Name,
		Captain:      result.Captain,
		Trace:        result.Trace,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step":     event.Step,
			"op":       event.Op,
			"sequence": event.Sequence,
			"revision": event.Revision,
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		if event.Suggestions != nil {
			list := make([]any, len(event.Suggestions))
			for j, sg := range event.Suggestions {
				list[j] = map[string]any{
					"type":           string(sg.Type),
					"severity":       string(sg.Severity),
					"table_ids":      sg.TableIDs,
					"impact_minutes": sg.ImpactMinutes,
				}
			}
			eventMap["suggestions"] = list
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"captain":       s.Captain,
		"trace":         traceList,
	}
}

// Marshal returns the canonical JSON bytes golden files hold.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<basename>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, GoldenDir, name+".golden")
}

// WriteGolden stores the snapshot at path, creating the directory if needed.
func WriteGolden(path string, snapshot TraceSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the snapshot matches the golden file at path
// byte for byte.
func CompareGolden(path string, snapshot TraceSnapshot) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	got, err := snapshot.Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to marshal current trace: %w", err)
	}
	return string(want) == string(got), nil
}

// RunWithGolden loads the scenario file, executes it and compares the trace
// against its golden file in the golden/ directory beside it.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot be loaded or executed.
// Test failure (via goldie) occurs if the trace doesn't match.
func RunWithGolden(t *testing.T, scenarioFile string) (*Result, error) {
	t.Helper()

	scenario, err := LoadScenario(scenarioFile)
	if err != nil {
		return nil, err
	}
	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := NewSnapshot(scenario, result)
	traceJSON, err := snapshot.Marshal()
	if err != nil {
		return nil, err
	}

	golden := GoldenPath(scenarioFile)
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Dir(golden)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, strings.TrimSuffix(filepath.Base(golden), ".golden"), traceJSON)

	return result, nil
}
