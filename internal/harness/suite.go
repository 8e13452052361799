package harness

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// Discover returns the scenario files under root in lexical order. root may
// be a single file. Files inside golden/ directories are skipped. A non-empty
// filter keeps only files whose base name contains it.
func Discover(root, filter string) ([]string, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: root}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == GoldenDir && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" && !strings.Contains(filepath.Base(path), filter) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Golden comparison outcomes.
const (
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
	GoldenMissing  = "missing"
)

// Outcome is the verdict on one scenario file.
type Outcome struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"`
	Errors []string `json:"errors,omitempty"`
}

// RunFile loads and runs one scenario file, then checks (or, with update,
// rewrites) its golden trace. A missing golden file leaves the verdict to the
// assertions alone.
func RunFile(ctx context.Context, file string, update bool) Outcome {
	out := Outcome{Name: filepath.Base(file), File: file}

	scenario, err := LoadScenario(file)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return out
	}
	out.Name = scenario.Name

	result, err := RunContext(ctx, scenario)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("scenario execution failed: %v", err)}
		return out
	}
	out.Pass = result.Pass
	out.Errors = result.Errors

	snapshot := NewSnapshot(scenario, result)
	golden := GoldenPath(file)

	if update {
		if err := WriteGolden(golden, snapshot); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return out
		}
		out.Golden = GoldenUpdated
		return out
	}

	if _, err := os.Stat(golden); os.IsNotExist(err) {
		out.Golden = GoldenMissing
		return out
	}

	match, err := CompareGolden(golden, snapshot)
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("golden comparison failed: %v", err))
		return out
	}
	if !match {
		out.Pass = false
		out.Golden = GoldenMismatch
		out.Errors = append(out.Errors, "trace does not match golden file")
		return out
	}
	out.Golden = GoldenMatch
	return out
}
