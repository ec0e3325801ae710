package pgn

import (
	"testing"

	"github.com/mbeaumont/elostream/internal/domain"
)

func TestTagsRoundTrip(t *testing.T) {
	rec := sampleRecord()
	doc, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	tags, err := Tags(doc)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != len(RequiredTags) {
		t.Fatalf("expected %d tags, got %d", len(RequiredTags), len(tags))
	}
	want := map[string]string{
		"Event":   "Rated Blitz game",
		"Site":    "https://lichess.org/QE4zHivV",
		"UTCDate": "2015-01-31",
		"UTCTime": "23:00:04",
		"White":   `"bob"`,
		"Black":   "alice",
		"Result":  "0-1",
	}
	for i, tag := range tags {
		if tag.Name != RequiredTags[i] {
			t.Fatalf("tag %d: expected %s, got %s", i, RequiredTags[i], tag.Name)
		}
		if tag.Value != want[tag.Name] {
			t.Fatalf("tag %s: expected %q, got %q", tag.Name, want[tag.Name], tag.Value)
		}
	}
}

func TestTagsMalformed(t *testing.T) {
	for _, doc := range []string{
		"Event \"x\"]\n\n*\n\n",
		"[Event x]\n\n*\n\n",
		"[Event \"x]\n\n*\n\n",
	} {
		if _, err := Tags(doc); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}

func TestSplitConcatenated(t *testing.T) {
	a, err := Format(sampleRecord())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	recB := sampleRecord()
	recB.Site = strp("https://lichess.org/abcd1234")
	recB.Movetext = "1-0"
	recB.Result = strp("1-0")
	b, err := Format(recB)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	docs := Split(a + b)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0] != a || docs[1] != b {
		t.Fatalf("split did not reproduce documents")
	}
	if Movetext(docs[1]) != "1-0" {
		t.Fatalf("movetext of second doc: %q", Movetext(docs[1]))
	}
}

func TestIsResultOnly(t *testing.T) {
	for _, token := range domain.ResultTokens {
		if !IsResultOnly(token) {
			t.Fatalf("expected %q to be result-only", token)
		}
	}
	if IsResultOnly("1. e4 e5") {
		t.Fatalf("move sequence misclassified as result-only")
	}
}
