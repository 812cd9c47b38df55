package processor

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Processor renders HTML snippets as readable text.
type Processor struct{}

// New creates a new HTML processor.
func New() *Processor {
	return &Processor{}
}

// Convert renders an HTML fragment as Markdown, keeping line breaks and
// emphasis that a flat text dump would lose.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// ExtractTitle returns the document <title>, whitespace-collapsed. Scanning
// stops at <body>, so review markup is never tokenized.
func (p *Processor) ExtractTitle(htmlContent string) string {
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "body":
				return ""
			case "title":
				if z.Next() != html.TextToken {
					return ""
				}
				return strings.Join(strings.Fields(string(z.Text())), " ")
			}
		}
	}
}
