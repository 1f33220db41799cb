package splitter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/hikidasu/internal/models"
)

func TestSplit_OverlappingWindows(t *testing.T) {
	doc := models.Document{Path: "a.txt", Text: "abcdefghijklmno"}
	chunks, err := Split(doc, 10, 2)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"abcdefghij", "ijklmno"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Content, w)
		}
		if chunks[i].Source != "a.txt" {
			t.Errorf("chunk %d source = %q", i, chunks[i].Source)
		}
	}
}

func TestSplit_WindowStarts(t *testing.T) {
	text := strings.Repeat("x", 25)
	chunks, err := Split(models.Document{Path: "p", Text: text}, 10, 4)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	// step = 6, starts at 0, 6, 12, 18, 24
	wantLens := []int{10, 10, 10, 7, 1}
	if len(chunks) != len(wantLens) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantLens))
	}
	for i, n := range wantLens {
		if len(chunks[i].Content) != n {
			t.Errorf("chunk %d length = %d, want %d", i, len(chunks[i].Content), n)
		}
	}
}

func TestSplit_BlankWindowsDropped(t *testing.T) {
	// Second window is entirely whitespace and must be dropped silently.
	doc := models.Document{Path: "p", Text: "abcd    \t\n  z"}
	chunks, err := Split(doc, 4, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for _, ch := range chunks {
		if strings.TrimSpace(ch.Content) == "" {
			t.Errorf("blank chunk emitted: %q", ch.Content)
		}
	}
	if len(chunks) != 2 {
		t.Errorf("got %d chunks, want 2", len(chunks))
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split(models.Document{Path: "p"}, 10, 2)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for empty text", len(chunks))
	}
}

func TestSplit_Deterministic(t *testing.T) {
	doc := models.Document{Path: "p", Text: "the quick brown fox jumps over the lazy dog"}
	a, err := Split(doc, 12, 3)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := Split(doc, 12, 3)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different chunk sequences")
	}
}

func TestSplit_Multibyte(t *testing.T) {
	doc := models.Document{Path: "p", Text: "日本語のテキストを分割する"}
	chunks, err := Split(doc, 5, 1)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks for multibyte text")
	}
	if got := []rune(chunks[0].Content); len(got) != 5 {
		t.Errorf("first chunk has %d runes, want 5", len(got))
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(models.Document{Text: "abc"}, tc.size, tc.overlap)
			if !errors.Is(err, ErrChunkConfig) {
				t.Errorf("Split(%d, %d) error = %v, want ErrChunkConfig", tc.size, tc.overlap, err)
			}
		})
	}
}

func TestSplitAll_PreservesDocumentOrder(t *testing.T) {
	docs := []models.Document{
		{Path: "one", Text: "aaaa"},
		{Path: "two", Text: "bbbb"},
	}
	chunks, err := SplitAll(docs, 4, 0)
	if err != nil {
		t.Fatalf("SplitAll: %v", err)
	}
	if len(chunks) != 2 || chunks[0].Source != "one" || chunks[1].Source != "two" {
		t.Errorf("unexpected chunk order: %+v", chunks)
	}
}
