package domain

import "testing"

func TestParseTimeControl(t *testing.T) {
	tc, err := ParseTimeControl("300+3")
	if err != nil {
		t.Fatalf("ParseTimeControl: %v", err)
	}
	if tc.BaseSec != 300 || tc.IncSec != 3 || tc.Unlimited {
		t.Fatalf("unexpected parse: %+v", tc)
	}

	tc, err = ParseTimeControl("-")
	if err != nil {
		t.Fatalf("ParseTimeControl(-): %v", err)
	}
	if !tc.Unlimited {
		t.Fatalf("expected unlimited for %q", "-")
	}

	for _, bad := range []string{"300", "abc+3", "300+x", "-5+3"} {
		if _, err := ParseTimeControl(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseTermination(t *testing.T) {
	cases := map[string]Termination{
		"Normal":           TerminationNormal,
		"Abandoned":        TerminationAbandoned,
		"Time forfeit":     TerminationTimeForfeit,
		"Rules infraction": TerminationOther,
		"whatever":         TerminationOther,
	}
	for in, want := range cases {
		if got := ParseTermination(in); got != want {
			t.Fatalf("ParseTermination(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasMoves(t *testing.T) {
	rec := &GameRecord{Movetext: "1. e4 e5"}
	if !rec.HasMoves() {
		t.Fatalf("expected moves")
	}
	for _, token := range ResultTokens {
		rec := &GameRecord{Movetext: token}
		if rec.HasMoves() {
			t.Fatalf("bare result %q misread as moves", token)
		}
	}
}
