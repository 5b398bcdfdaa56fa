// Package scoring decides the outcome of a finished challenge.
package scoring

import "github.com/google/uuid"

// Tally is one partner's aggregate for a challenge. UserID is nil when the
// partner slot is empty.
type Tally struct {
	UserID *uuid.UUID
	Points int
	Tasks  int
}

// Result is the outcome of a challenge. WinnerID is nil on a draw; the
// scores are always the higher and lower of the two point totals.
type Result struct {
	WinnerID    *uuid.UUID
	WinnerScore int
	LoserScore  int
}

// Draw reports whether no partner was designated winner.
func (r Result) Draw() bool {
	return r.WinnerID == nil
}

// Decide picks the partner with strictly more points, falling back to the
// one with strictly more distinct completed tasks. An empty slot counts as
// zero and never wins.
func Decide(first, second Tally) Result {
	if first.UserID == nil {
		first.Points, first.Tasks = 0, 0
	}
	if second.UserID == nil {
		second.Points, second.Tasks = 0, 0
	}

	res := Result{
		WinnerScore: max(first.Points, second.Points),
		LoserScore:  min(first.Points, second.Points),
	}

	var winner *Tally
	switch {
	case first.Points > second.Points:
		winner = &first
	case second.Points > first.Points:
		winner = &second
	case first.Tasks > second.Tasks:
		winner = &first
	case second.Tasks > first.Tasks:
		winner = &second
	}
	if winner != nil && winner.UserID != nil {
		id := *winner.UserID
		res.WinnerID = &id
	}
	return res
}
