package equity

import "fmt"

// Outcome tags a Score. Win and Loss are absolute and dominate every
// heuristic value.
type Outcome int8

const (
	Loss Outcome = iota - 1
	Heuristic
	Win
)

// Score is a position value from one player's point of view: either a finite
// heuristic or an absolute win or loss. Ordering is Loss < Heuristic(v) < Win,
// with heuristics ordered by value.
type Score struct {
	outcome Outcome
	value   int64
}

var (
	WinScore  = Score{outcome: Win}
	LossScore = Score{outcome: Loss}
	DrawScore = Score{outcome: Heuristic}
)

func HeuristicScore(v int64) Score {
	return Score{outcome: Heuristic, value: v}
}

func (s Score) Outcome() Outcome { return s.outcome }

// Value is the heuristic component. It is 0 for Win and Loss.
func (s Score) Value() int64 { return s.value }

// IsSentinel reports whether s is an absolute win or loss.
func (s Score) IsSentinel() bool {
	return s.outcome != Heuristic
}

// Negate returns the same position valued by the opponent.
func (s Score) Negate() Score {
	return Score{outcome: -s.outcome, value: -s.value}
}

// Compare returns -1, 0 or 1.
func (s Score) Compare(o Score) int {
	switch {
	case s.outcome < o.outcome:
		return -1
	case s.outcome > o.outcome:
		return 1
	case s.value < o.value:
		return -1
	case s.value > o.value:
		return 1
	}
	return 0
}

func (s Score) Less(o Score) bool    { return s.Compare(o) < 0 }
func (s Score) Greater(o Score) bool { return s.Compare(o) > 0 }

func (s Score) String() string {
	switch s.outcome {
	case Win:
		return "win"
	case Loss:
		return "loss"
	}
	return fmt.Sprintf("%d", s.value)
}

// MaxScore returns the larger of a and b, preferring a on ties.
func MaxScore(a, b Score) Score {
	if b.Greater(a) {
		return b
	}
	return a
}
