package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Termination is how a game ended, as labeled by the dataset.
type Termination string

const (
	TerminationNormal      Termination = "Normal"
	TerminationAbandoned   Termination = "Abandoned"
	TerminationTimeForfeit Termination = "Time forfeit"
	TerminationOther       Termination = "Other"
)

// ParseTermination maps a dataset label to a Termination.
// Labels outside the known set collapse to TerminationOther.
func ParseTermination(s string) Termination {
	switch strings.TrimSpace(s) {
	case "Normal":
		return TerminationNormal
	case "Abandoned":
		return TerminationAbandoned
	case "Time forfeit", "TimeForfeit":
		return TerminationTimeForfeit
	default:
		return TerminationOther
	}
}

// TimeControl is a parsed base+increment clock, both in seconds.
// Raw keeps the dataset string verbatim; "-" means no clock was recorded.
type TimeControl struct {
	Raw       string
	BaseSec   int
	IncSec    int
	Unlimited bool
}

// ParseTimeControl parses "300+3" style clock strings.
func ParseTimeControl(s string) (TimeControl, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw == "-" {
		return TimeControl{Raw: raw, Unlimited: true}, nil
	}
	base, inc, ok := strings.Cut(raw, "+")
	if !ok {
		return TimeControl{}, fmt.Errorf("time control %q: missing '+'", raw)
	}
	b, err := strconv.Atoi(base)
	if err != nil {
		return TimeControl{}, fmt.Errorf("time control %q: base: %w", raw, err)
	}
	i, err := strconv.Atoi(inc)
	if err != nil {
		return TimeControl{}, fmt.Errorf("time control %q: increment: %w", raw, err)
	}
	if b < 0 || i < 0 {
		return TimeControl{}, fmt.Errorf("time control %q: negative component", raw)
	}
	return TimeControl{Raw: raw, BaseSec: b, IncSec: i}, nil
}

// GameRecord is one row of the games dataset, immutable once produced.
//
// Pointer fields distinguish absent from explicitly empty: the source is an
// attribute bag where a tag can be missing outright, and the PGN formatter
// must treat those two cases differently.
type GameRecord struct {
	Event  *string
	Site   *string
	White  *string
	Black  *string
	Result *string

	UTCDate *string
	UTCTime *string

	WhiteElo        *int
	BlackElo        *int
	WhiteRatingDiff *int
	BlackRatingDiff *int

	ECO     *string
	Opening *string

	Termination Termination
	TimeControl TimeControl

	// Movetext is either numbered SAN move pairs or exactly one bare
	// result token for games with zero recorded moves.
	Movetext string
}

// ResultTokens are the four legal bare movetext/result values.
var ResultTokens = []string{"1-0", "0-1", "1/2-1/2", "*"}

// IsResultToken reports whether s is one of the four PGN result tokens.
func IsResultToken(s string) bool {
	switch s {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

// HasMoves reports whether the record carries actual move text rather than
// a bare result token.
func (r *GameRecord) HasMoves() bool {
	return !IsResultToken(strings.TrimSpace(r.Movetext))
}
