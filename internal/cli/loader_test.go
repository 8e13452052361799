package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/floorplan"
	"github.com/roach88/expo/internal/ir"
	"github.com/roach88/expo/internal/store"
	"github.com/roach88/expo/internal/testutil"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"load error", &floorplan.LoadError{Code: floorplan.ErrCodeParse, Message: "bad yaml"}, floorplan.ErrCodeParse, ExitCommandError},
		{"invalid floor", &floorplan.InvalidFloorError{Errors: []floorplan.ValidationError{{Code: floorplan.ErrUnknownTable}}}, floorplan.ErrUnknownTable, ExitFailure},
		{"engine rejection", fmt.Errorf("wrapped: %w", engine.NewOutOfBoundsError("T1", 0, 3, "up")), ErrCodeRejected, ExitFailure},
		{"revision conflict", fmt.Errorf("write: %w", store.ErrRevisionConflict), ErrCodeRevisionConflict, ExitFailure},
		{"invalid stored sequence", fmt.Errorf("write: %w", store.ErrInvalidSequence), ErrCodeDatabase, ExitCommandError},
		{"missing row", fmt.Errorf("read: %w", sql.ErrNoRows), ErrCodeDatabase, ExitCommandError},
		{"anything else", errors.New("boom"), ErrCodeGeneric, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := classify(tt.err)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.exit, ce.Exit)
		})
	}
}

func TestSelectCaptain(t *testing.T) {
	one := []ir.Captain{{ID: "cap-a"}}
	two := []ir.Captain{{ID: "cap-a"}, {ID: "cap-b"}}

	c, err := selectCaptain(one, "")
	require.NoError(t, err)
	assert.Equal(t, "cap-a", c.ID)

	c, err = selectCaptain(two, "cap-b")
	require.NoError(t, err)
	assert.Equal(t, "cap-b", c.ID)

	_, err = selectCaptain(two, "")
	assert.ErrorContains(t, err, "2 captains found")

	_, err = selectCaptain(nil, "")
	assert.ErrorContains(t, err, "0 captains found")
}

func TestFloorWithoutCaptainIDsUsesGenerator(t *testing.T) {
	floor := `units:
  - id: A1
    complexity: low
    proximity_to_kitchen: 3
captains:
  - name: Teo
    table_ids: [A1]
`
	path := filepath.Join(t.TempDir(), "floor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(floor), 0644))

	opts := &RootOptions{Format: "json", IDs: testutil.NewFixedIDGenerator("captain")}
	result := analyzeJSONWith(t, opts, path)
	assert.Equal(t, "captain-0001", result.CaptainID)
	assert.Empty(t, result.Suggestions)
}
