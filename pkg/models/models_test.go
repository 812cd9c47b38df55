package models

import "testing"

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  Tartine-Bakery-San-Francisco ", "tartine-bakery-san-francisco"},
		{"ALREADY-lower", "already-lower"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeKeyword(tt.raw); got != tt.want {
				t.Errorf("NormalizeKeyword(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildTargetURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		keyword  string
		want     string
	}{
		{
			name:     "yelp business page",
			template: "https://www.yelp.com/biz/{keyword}",
			keyword:  "tartine-bakery-san-francisco",
			want:     "https://www.yelp.com/biz/tartine-bakery-san-francisco",
		},
		{
			name:     "placeholder in query",
			template: "https://reviews.example.com/search?q={keyword}&page=1",
			keyword:  "pizza",
			want:     "https://reviews.example.com/search?q=pizza&page=1",
		},
		{
			name:     "repeated placeholder",
			template: "https://example.com/{keyword}/reviews/{keyword}",
			keyword:  "abc",
			want:     "https://example.com/abc/reviews/abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTargetURL(tt.template, tt.keyword)
			if got != tt.want {
				t.Errorf("BuildTargetURL() = %q, want %q", got, tt.want)
			}
			// Deterministic: same inputs, same output.
			if again := BuildTargetURL(tt.template, tt.keyword); again != got {
				t.Errorf("BuildTargetURL() not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestRating_Valid(t *testing.T) {
	for r := Rating(-1); r <= 7; r++ {
		want := r >= 1 && r <= 5
		if got := r.Valid(); got != want {
			t.Errorf("Rating(%d).Valid() = %v, want %v", r, got, want)
		}
	}
}
