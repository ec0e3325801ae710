package features

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mbeaumont/elostream/internal/domain"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func record(movetext string) *domain.GameRecord {
	return &domain.GameRecord{
		Site:        strp("https://lichess.org/QE4zHivV"),
		Result:      strp("0-1"),
		ECO:         strp("B30"),
		Opening:     strp("Sicilian Defense"),
		WhiteElo:    intp(1654),
		BlackElo:    intp(1919),
		Termination: domain.TerminationNormal,
		TimeControl: domain.TimeControl{Raw: "300+3", BaseSec: 300, IncSec: 3},
		Movetext:    movetext,
	}
}

func TestExtractOpeningPlies(t *testing.T) {
	row, err := Extract(record("1. e4 c5 2. Nf3 Nc6"), 3)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(row.OpeningSAN, []string{"e4", "c5", "Nf3"}) {
		t.Fatalf("SAN = %v", row.OpeningSAN)
	}
	if !reflect.DeepEqual(row.OpeningUCI, []string{"e2e4", "c7c5", "g1f3"}) {
		t.Fatalf("UCI = %v", row.OpeningUCI)
	}
	if row.Plies != 3 || row.TotalPlies != 4 {
		t.Fatalf("plies=%d total=%d", row.Plies, row.TotalPlies)
	}
	if row.ECO != "B30" || *row.WhiteElo != 1654 {
		t.Fatalf("predictors not carried: %+v", row)
	}
}

func TestExtractShortGame(t *testing.T) {
	row, err := Extract(record("1. e4 e5 1-0"), 10)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if row.Plies != 2 || row.TotalPlies != 2 {
		t.Fatalf("plies=%d total=%d", row.Plies, row.TotalPlies)
	}
}

func TestExtractNoMoves(t *testing.T) {
	for _, token := range domain.ResultTokens {
		_, err := Extract(record(token), 10)
		if !errors.Is(err, ErrNoMoves) {
			t.Fatalf("expected ErrNoMoves for %q, got %v", token, err)
		}
	}
}

func TestExtractInvalidSAN(t *testing.T) {
	if _, err := Extract(record("1. e9 c5"), 10); err == nil {
		t.Fatalf("expected error for illegal move")
	}
}

func TestExtractRejectsBadArgs(t *testing.T) {
	if _, err := Extract(nil, 10); err == nil {
		t.Fatalf("expected error for nil record")
	}
	if _, err := Extract(record("1. e4 e5"), 0); err == nil {
		t.Fatalf("expected error for zero maxPly")
	}
}

func TestCSVWriter(t *testing.T) {
	row, err := Extract(record("1. e4 c5 2. Nf3 Nc6"), 4)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	if err := w.Write(row); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "site,eco,opening") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "e2e4 c7c5 g1f3 b8c6") {
		t.Fatalf("row = %q", lines[1])
	}
}
