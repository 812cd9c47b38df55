package extractor

import (
	"strings"
	"testing"
)

const reviewPage = `<html><head><title>Tartine - Reviews</title></head><body>
	<p class="intro">Bakery in the Mission.</p>
	<div>
		<p class="raw__09f24__T4Ezm comment__09f24__D0cxf">Best morning bun I ever had.</p>
		<p class="comment__09f24__D0cxf">   </p>
		<p class="comment__09f24__D0cxf">Too crowded, <b>slow</b> service.</p>
		<span class="comment">Not a paragraph.</span>
	</div>
</body></html>`

func mustLookup(t *testing.T, name string) Strategy {
	t.Helper()
	s, err := Lookup(name, "", "")
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", name, err)
	}
	return s
}

func texts(t *testing.T, e *Extractor, page string) []string {
	t.Helper()
	fragments, err := e.Extract(page)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	out := make([]string, len(fragments))
	for i, f := range fragments {
		if f.Strategy != e.Strategy() {
			t.Errorf("fragment %d strategy = %q, want %q", i, f.Strategy, e.Strategy())
		}
		out[i] = f.Text
	}
	return out
}

func TestExtract_CommentClassV1(t *testing.T) {
	e := New(mustLookup(t, "comment-class/v1"), Config{})

	got := texts(t, e, reviewPage)
	want := []string{"Best morning bun I ever had.", "Too crowded, slow service."}

	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_CommentClassV1_NoMatch(t *testing.T) {
	e := New(mustLookup(t, "comment-class/v1"), Config{})

	got := texts(t, e, `<html><body><p>Only plain paragraphs.</p></body></html>`)
	if len(got) != 0 {
		t.Errorf("Extract() = %q, want no fragments", got)
	}
}

func TestExtract_CommentClassV2_FallsBackToParagraphs(t *testing.T) {
	e := New(mustLookup(t, "comment-class/v2"), Config{})

	got := texts(t, e, `<html><body><p>First.</p><p class="x">Second.</p></body></html>`)
	if len(got) != 2 || got[0] != "First." || got[1] != "Second." {
		t.Errorf("Extract() = %q, want both paragraphs", got)
	}

	// With a class match present, no fallback happens.
	got = texts(t, e, reviewPage)
	if len(got) != 2 {
		t.Errorf("Extract() = %q, want the two comment paragraphs", got)
	}
}

func TestExtract_Paragraphs(t *testing.T) {
	e := New(mustLookup(t, "paragraphs/v1"), Config{})

	got := texts(t, e, reviewPage)
	if len(got) != 3 {
		t.Fatalf("Extract() = %q, want 3 non-blank paragraphs", got)
	}
	if got[0] != "Bakery in the Mission." {
		t.Errorf("first fragment = %q", got[0])
	}
}

func TestExtract_MaxFragments(t *testing.T) {
	e := New(mustLookup(t, "paragraphs/v1"), Config{MaxFragments: 2})

	got := texts(t, e, reviewPage)
	if len(got) != 2 {
		t.Errorf("Extract() returned %d fragments, want 2", len(got))
	}
}

func TestExtract_RenderMarkdown(t *testing.T) {
	e := New(mustLookup(t, "comment-class/v1"), Config{RenderMarkdown: true})

	got := texts(t, e, reviewPage)
	if len(got) != 2 {
		t.Fatalf("Extract() = %q, want 2 fragments", got)
	}
	if !strings.Contains(got[1], "**slow**") {
		t.Errorf("markdown fragment = %q, want bold preserved", got[1])
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name         string
		strategy     string
		tag          string
		classPattern string
		wantErr      bool
	}{
		{"builtin v1", "comment-class/v1", "", "", false},
		{"builtin v2", "comment-class/v2", "", "", false},
		{"builtin paragraphs", "paragraphs/v1", "", "", false},
		{"custom", "custom/v1", "div", "review", false},
		{"custom without class", "custom/v1", "li", "", false},
		{"custom without tag", "custom/v1", "", "review", true},
		{"custom bad regexp", "custom/v1", "div", "(", true},
		{"unknown", "comment-class/v9", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Lookup(tt.strategy, tt.tag, tt.classPattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Name() != tt.strategy {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.strategy)
			}
		})
	}
}

func TestExtract_CustomStrategy(t *testing.T) {
	s, err := Lookup("custom/v1", "li", "^review-")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	e := New(s, Config{})

	page := `<ul><li class="review-body">Lovely.</li><li class="nav">Home</li><li class="x review-text">Meh.</li></ul>`
	got := texts(t, e, page)
	if len(got) != 2 || got[0] != "Lovely." || got[1] != "Meh." {
		t.Errorf("Extract() = %q, want [Lovely. Meh.]", got)
	}
}
