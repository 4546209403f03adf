package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	for _, r := range "WDL" {
		outcome, err := ParseOutcome(r)
		require.NoError(t, err)
		assert.Equal(t, Outcome(r), outcome)
	}

	_, err := ParseOutcome('X')
	assert.Error(t, err)
}

func TestOutcomePoints(t *testing.T) {
	assert.Equal(t, int32(3), Win.Points())
	assert.Equal(t, int32(1), Draw.Points())
	assert.Equal(t, int32(0), Loss.Points())
}

func TestFormPoints(t *testing.T) {
	tests := []struct {
		form string
		want int32
	}{
		{"WLWWD", 10},
		{"WWWWW", 15},
		{"LLLLL", 0},
		{"DDDDD", 5},
		{"WD", 4},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := FormPoints(tt.form)
		require.NoError(t, err, "form %q", tt.form)
		assert.Equal(t, tt.want, got, "form %q", tt.form)
	}
}

func TestFormPointsRejectsUnknownOutcome(t *testing.T) {
	_, err := FormPoints("WWXWW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WWXWW")
}
