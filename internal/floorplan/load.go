package floorplan

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/expo/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Load error codes.
const (
	ErrCodeNotFound    = "E210" // file missing or unreadable
	ErrCodeUnsupported = "E211" // unknown file extension
	ErrCodeParse       = "E212" // YAML syntax, unknown field or type mismatch
	ErrCodeSchema      = "E213" // CUE compile or #Floor schema violation
)

// LoadError represents a floor file that could not be decoded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a floor file, choosing the decoder by extension.
// The result is neither normalized nor validated.
func Load(path string) (*ir.Floor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("read floor file: %v", err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".cue":
		return DecodeCUE(filepath.Base(path), data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported floor file %q: want .yaml, .yml or .cue", path),
		}
	}
}

// DecodeYAML decodes a floor from YAML. Unknown fields are rejected.
func DecodeYAML(data []byte) (*ir.Floor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f ir.Floor
	if err := dec.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("decode floor: %v", err)}
	}
	return &f, nil
}

// DecodeCUE compiles data, unifies it with the #Floor schema and decodes the
// concrete result. filename only labels error positions.
func DecodeCUE(filename string, data []byte) (*ir.Floor, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile floor schema: %w", err)
	}
	floorDef := schema.LookupPath(cue.ParsePath("#Floor"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := floorDef.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var f ir.Floor
	if err := unified.Decode(&f); err != nil {
		return nil, formatCUEError(err)
	}
	return &f, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeSchema, Message: err.Error()}
	}

	// Report the first error; CUE often repeats one root cause many times.
	first := errs[0]
	loadErr := &LoadError{Code: ErrCodeSchema, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
