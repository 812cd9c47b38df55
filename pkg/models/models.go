package models

import (
	"strings"
	"time"
)

// KeywordPlaceholder is substituted with the keyword in a target URL template.
const KeywordPlaceholder = "{keyword}"

// Rating bounds produced by the sentiment model.
const (
	MinRating Rating = 1
	MaxRating Rating = 5
)

// ScoreRequest is the body accepted by the get_score endpoint.
type ScoreRequest struct {
	Keyword string `json:"keyword"`
}

// Document is a fetched page. It lives for a single request.
type Document struct {
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"` // HTTP Content-Type header
	StatusCode  int       `json:"status_code"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Fragment is one review/comment snippet pulled out of a Document.
type Fragment struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy"` // extraction strategy that produced it
}

// Rating is a sentiment class in [MinRating, MaxRating].
type Rating int

// Valid reports whether r is within the model's rating range.
func (r Rating) Valid() bool {
	return r >= MinRating && r <= MaxRating
}

// ScoreResult is the outcome of one scoring run.
type ScoreResult struct {
	ID         string    `json:"id"`
	Keyword    string    `json:"keyword"`
	URL        string    `json:"url"`
	Strategy   string    `json:"strategy"`
	Fragments  []string  `json:"fragments,omitempty"`
	Ratings    []Rating  `json:"ratings"`
	Score      float64   `json:"score"` // mean(Ratings) * 2, in [2, 10]
	ComputedAt time.Time `json:"computed_at"`
}

// NormalizeKeyword trims and lowercases a raw keyword.
func NormalizeKeyword(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// BuildTargetURL substitutes keyword into template.
// The keyword is inserted verbatim; the HTTP client rejects malformed URLs.
func BuildTargetURL(template, keyword string) string {
	return strings.ReplaceAll(template, KeywordPlaceholder, keyword)
}
