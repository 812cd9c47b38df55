package processor

import (
	"strings"
	"testing"
)

func TestProcessor_Convert(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{
			name:     "plain review",
			html:     `<p class="comment">Best croissant in town.</p>`,
			contains: []string{"Best croissant in town."},
		},
		{
			name:     "line breaks survive",
			html:     `<p>Friendly staff.<br>Long wait though.</p>`,
			contains: []string{"Friendly staff.", "Long wait though."},
		},
		{
			name:     "emphasis",
			html:     `<p>The bread was <strong>amazing</strong></p>`,
			contains: []string{"**amazing**"},
		},
		{
			name:     "nested spans",
			html:     `<p><span lang="en">Would come back</span></p>`,
			contains: []string{"Would come back"},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
			if result != strings.TrimSpace(result) {
				t.Errorf("Convert() should trim output, got %q", result)
			}
		})
	}
}

func TestProcessor_Convert_EmptyInput(t *testing.T) {
	p := New()

	for _, in := range []string{"", "   \n\t"} {
		result, err := p.Convert(in)
		if err != nil {
			t.Fatalf("Convert(%q) error = %v", in, err)
		}
		if result != "" {
			t.Errorf("Convert(%q) = %q, want empty", in, result)
		}
	}
}

func TestProcessor_ExtractTitle(t *testing.T) {
	p := New()
	html := `<html><head><title> Tartine Bakery - Yelp </title></head><body><p>Content</p></body></html>`

	if title := p.ExtractTitle(html); title != "Tartine Bakery - Yelp" {
		t.Errorf("ExtractTitle() = %q, want %q", title, "Tartine Bakery - Yelp")
	}
}

func TestProcessor_ExtractTitle_NoTitle(t *testing.T) {
	p := New()
	html := `<html><body><p>No title here</p></body></html>`

	if title := p.ExtractTitle(html); title != "" {
		t.Errorf("ExtractTitle() should return empty for no title, got %q", title)
	}
}

func TestProcessor_ExtractTitle_Variants(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"entities decoded", `<html><head><title>Tartine &amp; Co</title></head></html>`, "Tartine & Co"},
		{"whitespace collapsed", "<title>\n  Tartine\n  Bakery  </title>", "Tartine Bakery"},
		{"empty title", `<html><head><title></title></head><body></body></html>`, ""},
		{"title inside body ignored", `<html><body><svg><title>icon</title></svg></body></html>`, ""},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ExtractTitle(tt.html); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
