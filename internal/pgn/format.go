// Package pgn renders game records as PGN documents and re-extracts tag
// pairs from rendered documents. It reassembles fields it already has; it
// is not a parser for the full PGN grammar.
package pgn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mbeaumont/elostream/internal/domain"
)

// RequiredTags lists the seven tags every document carries, in emit order.
var RequiredTags = []string{"Event", "Site", "UTCDate", "UTCTime", "White", "Black", "Result"}

// Format renders one GameRecord as a PGN document: the required tag block,
// optional tags the source supplied, a blank line, the movetext verbatim,
// and a trailing blank line so documents can be concatenated and re-split.
// Deterministic and side-effect free; safe for concurrent use.
func Format(rec *domain.GameRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("pgn: nil record")
	}

	required := []struct {
		tag string
		val *string
	}{
		{"Event", rec.Event},
		{"Site", rec.Site},
		{"UTCDate", rec.UTCDate},
		{"UTCTime", rec.UTCTime},
		{"White", rec.White},
		{"Black", rec.Black},
		{"Result", rec.Result},
	}

	var b strings.Builder
	for _, rt := range required {
		if rt.val == nil {
			return "", &MissingRequiredFieldError{Tag: rt.tag}
		}
		writeTag(&b, rt.tag, *rt.val)
	}

	writeIntTag(&b, "WhiteElo", rec.WhiteElo)
	writeIntTag(&b, "BlackElo", rec.BlackElo)
	writeIntTag(&b, "WhiteRatingDiff", rec.WhiteRatingDiff)
	writeIntTag(&b, "BlackRatingDiff", rec.BlackRatingDiff)
	if rec.ECO != nil {
		writeTag(&b, "ECO", *rec.ECO)
	}
	if rec.Opening != nil {
		writeTag(&b, "Opening", *rec.Opening)
	}
	if rec.TimeControl.Raw != "" {
		writeTag(&b, "TimeControl", rec.TimeControl.Raw)
	}
	if rec.Termination != "" {
		writeTag(&b, "Termination", string(rec.Termination))
	}

	b.WriteString("\n")
	b.WriteString(rec.Movetext)
	b.WriteString("\n\n")
	return b.String(), nil
}

func writeTag(b *strings.Builder, tag, value string) {
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString(" \"")
	b.WriteString(escapeTagValue(value))
	b.WriteString("\"]\n")
}

func writeIntTag(b *strings.Builder, tag string, v *int) {
	if v == nil {
		return
	}
	writeTag(b, tag, strconv.Itoa(*v))
}

// escapeTagValue escapes backslash and double quote so the tag line stays
// parseable no matter what the source field contains.
func escapeTagValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func unescapeTagValue(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
