package pgn

import (
	"fmt"
	"strings"

	"github.com/mbeaumont/elostream/internal/domain"
)

// Tag is one [Name "Value"] pair extracted from a document.
type Tag struct {
	Name  string
	Value string
}

// Tags re-extracts the tag pairs from a formatted document, reversing the
// escaping applied by Format. Lines after the first blank line are ignored.
func Tags(doc string) ([]Tag, error) {
	var tags []Tag
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == "" {
			break
		}
		tag, err := parseTagLine(line)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// TagMap is Tags collapsed to a name → value lookup.
func TagMap(doc string) (map[string]string, error) {
	tags, err := Tags(doc)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.Name] = t.Value
	}
	return m, nil
}

func parseTagLine(line string) (Tag, error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Tag{}, fmt.Errorf("pgn: malformed tag line %q", line)
	}
	s = s[1 : len(s)-1]
	name, rest, ok := strings.Cut(s, " ")
	if !ok || name == "" {
		return Tag{}, fmt.Errorf("pgn: malformed tag line %q", line)
	}
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return Tag{}, fmt.Errorf("pgn: malformed tag value in %q", line)
	}
	quoted := rest[1 : len(rest)-1]
	if danglingEscape(quoted) {
		return Tag{}, fmt.Errorf("pgn: dangling escape in %q", line)
	}
	return Tag{Name: name, Value: unescapeTagValue(quoted)}, nil
}

func danglingEscape(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// Movetext returns the move section of a formatted document.
func Movetext(doc string) string {
	_, rest, ok := strings.Cut(doc, "\n\n")
	if !ok {
		return ""
	}
	return strings.TrimRight(rest, "\n")
}

// Split breaks concatenated documents apart on the blank-line boundary
// Format guarantees: each document is a tag block and a movetext section,
// both terminated by exactly one blank line.
func Split(text string) []string {
	parts := strings.Split(text, "\n\n")
	// Split leaves a trailing empty chunk when text ends with the
	// document separator.
	if n := len(parts); n > 0 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	var docs []string
	for i := 0; i+1 < len(parts); i += 2 {
		docs = append(docs, parts[i]+"\n\n"+parts[i+1]+"\n\n")
	}
	return docs
}

// IsResultOnly reports whether movetext is a bare result token, the shape
// the dataset uses for games with zero recorded moves.
func IsResultOnly(movetext string) bool {
	return domain.IsResultToken(strings.TrimSpace(movetext))
}
