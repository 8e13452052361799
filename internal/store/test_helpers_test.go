package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/ir"
	"github.com/roach88/expo/internal/testutil"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testFloor has two captains: "north" with A, B, C and "south" with D, E.
func testFloor() *ir.Floor {
	north := testutil.NewFloor("north",
		testutil.NewUnit("A", testutil.Proximity(9), testutil.VIP("gold")),
		testutil.NewUnit("B", testutil.High()),
		testutil.NewUnit("C", testutil.Accessible()),
	)
	south := testutil.NewFloor("south",
		testutil.NewUnit("D"),
		testutil.NewUnit("E", testutil.Proximity(1)),
	)
	return &ir.Floor{
		Units:    append(north.Units, south.Units...),
		Captains: append(north.Captains, south.Captains...),
		CoursePlans: []ir.CoursePlan{
			{Code: "APP", Label: "Appetizer", TargetDurationMin: 20, ToleranceMin: 5},
			{Code: "ENT", Label: "Entree", TargetDurationMin: 35, ToleranceMin: 10},
		},
	}
}

// savedStore returns a store holding testFloor.
func savedStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	require.NoError(t, s.SaveFloor(context.Background(), testFloor()))
	return s
}
