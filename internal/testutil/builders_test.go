package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/ir"
)

func TestNewUnit_Defaults(t *testing.T) {
	u := NewUnit("T1")

	assert.Equal(t, "T1", u.ID)
	assert.Equal(t, ir.ComplexityLow, u.Complexity)
	assert.Equal(t, 5, u.ProximityToKitchen)
	assert.False(t, u.AccessibilityFriendly)
	assert.False(t, u.IsVIP())
}

func TestNewUnit_Options(t *testing.T) {
	u := NewUnit("T1", Proximity(9), High(), VIP("gold"), Accessible(), OwnedBy("cap"))

	assert.Equal(t, 9, u.ProximityToKitchen)
	assert.Equal(t, ir.ComplexityHigh, u.Complexity)
	assert.True(t, u.IsVIP())
	assert.True(t, u.AccessibilityFriendly)
	assert.Equal(t, "cap", u.CaptainID)
	require.Len(t, u.Seats, 2)
	assert.Equal(t, 2, u.Seats[1].Number)
}

func TestSequenceIDs(t *testing.T) {
	assert.Equal(t, ir.Sequence{"T1", "T2", "T3"}, SequenceIDs(3))
	assert.Empty(t, SequenceIDs(0))
}

func TestNewFloor_OwnsEveryUnit(t *testing.T) {
	f := NewFloor("cap", NewUnit("A"), NewUnit("B"))

	require.Len(t, f.Captains, 1)
	assert.Equal(t, []string{"A", "B"}, f.Captains[0].TableIDs)
	for _, u := range f.Units {
		assert.Equal(t, "cap", u.CaptainID)
	}
	assert.Len(t, f.Index(), 2)
}
