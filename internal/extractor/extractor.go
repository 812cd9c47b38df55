package extractor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mfenderov/sentiscore/internal/processor"
	"github.com/mfenderov/sentiscore/pkg/models"
)

// Config holds extractor configuration.
type Config struct {
	MaxFragments   int  // 0 = unlimited
	RenderMarkdown bool // render inner HTML instead of flattening text
}

// Extractor pulls review fragments out of a page using one Strategy.
type Extractor struct {
	config    Config
	strategy  Strategy
	processor *processor.Processor
}

// New creates an Extractor for the given strategy.
func New(strategy Strategy, config Config) *Extractor {
	return &Extractor{
		config:    config,
		strategy:  strategy,
		processor: processor.New(),
	}
}

// Strategy returns the versioned name of the active strategy.
func (e *Extractor) Strategy() string {
	return e.strategy.Name()
}

// Extract returns the non-blank fragments selected by the strategy, in
// document order. An empty slice means nothing matched.
func (e *Extractor) Extract(htmlContent string) ([]models.Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var fragments []models.Fragment
	e.strategy.Select(doc).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := e.render(sel)
		if text == "" {
			return true
		}
		fragments = append(fragments, models.Fragment{Text: text, Strategy: e.strategy.Name()})
		return e.config.MaxFragments == 0 || len(fragments) < e.config.MaxFragments
	})

	slog.Debug("extracted fragments", "strategy", e.strategy.Name(), "count", len(fragments))
	return fragments, nil
}

func (e *Extractor) render(sel *goquery.Selection) string {
	if e.config.RenderMarkdown {
		inner, err := sel.Html()
		if err == nil {
			if md, err := e.processor.Convert(inner); err == nil {
				return md
			}
		}
		slog.Debug("markdown rendering failed, using text", "strategy", e.strategy.Name())
	}
	return strings.TrimSpace(sel.Text())
}
