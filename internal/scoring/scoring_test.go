package scoring

import (
	"testing"

	"github.com/google/uuid"
)

func TestDecide(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	tests := []struct {
		name       string
		first      Tally
		second     Tally
		wantWinner *uuid.UUID
		wantHigh   int
		wantLow    int
	}{
		{
			name:       "more points wins",
			first:      Tally{UserID: &a, Points: 40, Tasks: 1},
			second:     Tally{UserID: &b, Points: 25, Tasks: 5},
			wantWinner: &a,
			wantHigh:   40,
			wantLow:    25,
		},
		{
			name:       "second partner with more points wins",
			first:      Tally{UserID: &a, Points: 10, Tasks: 2},
			second:     Tally{UserID: &b, Points: 11, Tasks: 1},
			wantWinner: &b,
			wantHigh:   11,
			wantLow:    10,
		},
		{
			name:       "points tie broken by task count",
			first:      Tally{UserID: &a, Points: 30, Tasks: 2},
			second:     Tally{UserID: &b, Points: 30, Tasks: 3},
			wantWinner: &b,
			wantHigh:   30,
			wantLow:    30,
		},
		{
			name:     "full tie is a draw",
			first:    Tally{UserID: &a, Points: 12, Tasks: 2},
			second:   Tally{UserID: &b, Points: 12, Tasks: 2},
			wantHigh: 12,
			wantLow:  12,
		},
		{
			name:       "empty partner slot scores zero",
			first:      Tally{UserID: &a, Points: 5, Tasks: 1},
			second:     Tally{UserID: nil, Points: 99, Tasks: 9},
			wantWinner: &a,
			wantHigh:   5,
			wantLow:    0,
		},
		{
			name:     "nobody scored",
			first:    Tally{UserID: &a},
			second:   Tally{UserID: &b},
			wantHigh: 0,
			wantLow:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.first, tt.second)
			switch {
			case tt.wantWinner == nil && got.WinnerID != nil:
				t.Errorf("winner = %s, want draw", *got.WinnerID)
			case tt.wantWinner != nil && got.WinnerID == nil:
				t.Errorf("winner = draw, want %s", *tt.wantWinner)
			case tt.wantWinner != nil && *got.WinnerID != *tt.wantWinner:
				t.Errorf("winner = %s, want %s", *got.WinnerID, *tt.wantWinner)
			}
			if got.WinnerScore != tt.wantHigh {
				t.Errorf("WinnerScore = %d, want %d", got.WinnerScore, tt.wantHigh)
			}
			if got.LoserScore != tt.wantLow {
				t.Errorf("LoserScore = %d, want %d", got.LoserScore, tt.wantLow)
			}
			if got.Draw() != (tt.wantWinner == nil) {
				t.Errorf("Draw() = %v", got.Draw())
			}
		})
	}
}

func TestDecideDoesNotAliasInput(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	want := a
	first := Tally{UserID: &a, Points: 3}
	got := Decide(first, Tally{UserID: &b})

	a = uuid.New()
	if *got.WinnerID != want {
		t.Errorf("winner changed after mutating input: %s", *got.WinnerID)
	}
}
