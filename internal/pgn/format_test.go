package pgn

import (
	"errors"
	"strings"
	"testing"

	"github.com/mbeaumont/elostream/internal/domain"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func sampleRecord() *domain.GameRecord {
	return &domain.GameRecord{
		Event:    strp("Rated Blitz game"),
		Site:     strp("https://lichess.org/QE4zHivV"),
		UTCDate:  strp("2015-01-31"),
		UTCTime:  strp("23:00:04"),
		White:    strp(`"bob"`),
		Black:    strp("alice"),
		Result:   strp("0-1"),
		Movetext: "1. e4 c5 2. Nf3 Nc6",
	}
}

func TestFormatEndToEnd(t *testing.T) {
	want := strings.Join([]string{
		`[Event "Rated Blitz game"]`,
		`[Site "https://lichess.org/QE4zHivV"]`,
		`[UTCDate "2015-01-31"]`,
		`[UTCTime "23:00:04"]`,
		`[White "\"bob\""]`,
		`[Black "alice"]`,
		`[Result "0-1"]`,
		``,
		`1. e4 c5 2. Nf3 Nc6`,
		``,
		``,
	}, "\n")

	got, err := Format(sampleRecord())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected document:\n got: %q\nwant: %q", got, want)
	}
}

func TestFormatIdempotent(t *testing.T) {
	rec := sampleRecord()
	a, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	b, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if a != b {
		t.Fatalf("formatting the same record twice differed")
	}
}

func TestFormatMissingRequiredField(t *testing.T) {
	rec := sampleRecord()
	rec.Black = nil
	_, err := Format(rec)
	var mf *MissingRequiredFieldError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MissingRequiredFieldError, got %v", err)
	}
	if mf.Tag != "Black" {
		t.Fatalf("expected Black, got %s", mf.Tag)
	}
}

func TestFormatExplicitEmptyValue(t *testing.T) {
	rec := sampleRecord()
	rec.Black = strp("")
	doc, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(doc, `[Black ""]`) {
		t.Fatalf("explicit empty value not preserved:\n%s", doc)
	}
}

func TestFormatResultOnlyMovetext(t *testing.T) {
	for _, token := range domain.ResultTokens {
		rec := sampleRecord()
		rec.Result = strp(token)
		rec.Movetext = token
		doc, err := Format(rec)
		if err != nil {
			t.Fatalf("Format(%s): %v", token, err)
		}
		if !strings.HasSuffix(doc, "\n\n"+token+"\n\n") {
			t.Fatalf("movetext section wrong for %s:\n%q", token, doc)
		}
	}
}

func TestFormatOptionalTags(t *testing.T) {
	rec := sampleRecord()
	rec.WhiteElo = intp(1654)
	rec.BlackElo = intp(1919)
	rec.WhiteRatingDiff = intp(-13)
	rec.ECO = strp("B30")
	rec.Opening = strp("Sicilian Defense")
	rec.Termination = domain.TerminationNormal
	tc, err := domain.ParseTimeControl("300+3")
	if err != nil {
		t.Fatalf("ParseTimeControl: %v", err)
	}
	rec.TimeControl = tc

	doc, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	for _, line := range []string{
		`[WhiteElo "1654"]`,
		`[BlackElo "1919"]`,
		`[WhiteRatingDiff "-13"]`,
		`[ECO "B30"]`,
		`[Opening "Sicilian Defense"]`,
		`[TimeControl "300+3"]`,
		`[Termination "Normal"]`,
	} {
		if !strings.Contains(doc, line) {
			t.Fatalf("missing %s in:\n%s", line, doc)
		}
	}
	if strings.Contains(doc, "BlackRatingDiff") {
		t.Fatalf("absent optional tag was emitted:\n%s", doc)
	}
}

func TestEscapeBoundary(t *testing.T) {
	rec := sampleRecord()
	rec.White = strp(`back\slash "quoted"`)
	doc, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(doc, `[White "back\\slash \"quoted\""]`) {
		t.Fatalf("escaping wrong:\n%s", doc)
	}
	tags, err := TagMap(doc)
	if err != nil {
		t.Fatalf("TagMap: %v", err)
	}
	if tags["White"] != `back\slash "quoted"` {
		t.Fatalf("round-trip lost escaping: %q", tags["White"])
	}
}
