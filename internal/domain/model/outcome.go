package model

import (
	"fmt"
)

// Outcome is a single match result in a team's recent form string.
type Outcome rune

const (
	Win  Outcome = 'W'
	Draw Outcome = 'D'
	Loss Outcome = 'L'
)

// ParseOutcome maps one form character to its Outcome. Any character outside
// W, D and L is rejected.
func ParseOutcome(r rune) (Outcome, error) {
	switch r {
	case 'W', 'D', 'L':
		return Outcome(r), nil
	default:
		return 0, fmt.Errorf("unknown form outcome %q", r)
	}
}

// Points returns the league points awarded for the outcome: three for a win,
// one for a draw, zero for a loss.
func (o Outcome) Points() int32 {
	switch o {
	case Win:
		return 3
	case Draw:
		return 1
	default:
		return 0
	}
}

// FormPoints sums the points over every outcome in a form string such as
// "WDLWW". An empty string yields zero points, matching a team with no
// recorded matches. Strings of any length are accepted; a character outside
// W, D and L makes the whole string invalid.
func FormPoints(form string) (int32, error) {
	var total int32
	for _, r := range form {
		outcome, err := ParseOutcome(r)
		if err != nil {
			return 0, fmt.Errorf("invalid form string %q: %w", form, err)
		}
		total += outcome.Points()
	}
	return total, nil
}
