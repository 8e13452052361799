package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSeatIsVIP(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"", false},
		{"standard", false},
		{"gold", true},
		{"regular", true}, // anything but standard counts
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, Seat{VIPStatus: tt.status}.IsVIP())
		})
	}
}

func TestUnitIsVIP(t *testing.T) {
	u := Unit{Seats: []Seat{{Number: 1}, {Number: 2, VIPStatus: "standard"}}}
	assert.False(t, u.IsVIP())

	u.Seats = append(u.Seats, Seat{Number: 3, VIPStatus: "platinum"})
	assert.True(t, u.IsVIP())

	assert.False(t, Unit{}.IsVIP(), "no seats is never VIP")
}

func TestSeverityWeight(t *testing.T) {
	assert.Equal(t, 3, SeverityHigh.Weight())
	assert.Equal(t, 2, SeverityMedium.Weight())
	assert.Equal(t, 1, SeverityLow.Weight())
	assert.Equal(t, 0, Severity("urgent").Weight())
}

func TestParsers(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, DirectionUp, d)
	_, err = ParseDirection("left")
	assert.Error(t, err)

	sev, err := ParseSeverity("medium")
	require.NoError(t, err)
	assert.Equal(t, SeverityMedium, sev)
	_, err = ParseSeverity("critical")
	assert.Error(t, err)

	typ, err := ParseSuggestionType("grouping")
	require.NoError(t, err)
	assert.Equal(t, SuggestionGrouping, typ)
	_, err = ParseSuggestionType("seating")
	assert.Error(t, err)
}

func TestComplexityValid(t *testing.T) {
	assert.True(t, ComplexityHigh.Valid())
	assert.False(t, Complexity("extreme").Valid())
	assert.False(t, Complexity("").Valid())
}

func TestSequenceHelpers(t *testing.T) {
	seq := Sequence{"T1", "T2"}
	clone := seq.Clone()
	clone[0] = "X"

	assert.Equal(t, "T1", seq[0], "clone must not alias")
	assert.Equal(t, 1, seq.IndexOf("T2"))
	assert.Equal(t, -1, seq.IndexOf("T9"))
	assert.True(t, seq.Contains("T1"))
	assert.NotNil(t, Sequence(nil).Clone())
}

func TestFloorIndexAndCaptain(t *testing.T) {
	f := &Floor{
		Units:    []Unit{{ID: "T1", ProximityToKitchen: 4}, {ID: "T2"}},
		Captains: []Captain{{ID: "cap-1", TableIDs: []string{"T1", "T2"}}},
	}

	idx := f.Index()
	require.Len(t, idx, 2)
	assert.Equal(t, 4, idx["T1"].ProximityToKitchen)

	c, ok := f.Captain("cap-1")
	require.True(t, ok)
	assert.Equal(t, []string{"T1", "T2"}, c.TableIDs)

	_, ok = f.Captain("cap-9")
	assert.False(t, ok)
}

func TestUnitYAMLTags(t *testing.T) {
	src := `
id: T4
complexity: high
proximity_to_kitchen: 7
accessibility_friendly: true
seats:
  - number: 1
    vip_status: gold
`
	var u Unit
	require.NoError(t, yaml.Unmarshal([]byte(src), &u))

	assert.Equal(t, "T4", u.ID)
	assert.Equal(t, ComplexityHigh, u.Complexity)
	assert.Equal(t, 7, u.ProximityToKitchen)
	assert.True(t, u.AccessibilityFriendly)
	assert.True(t, u.IsVIP())
}
