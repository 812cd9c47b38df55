package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mfenderov/sentiscore/internal/aggregate"
	"github.com/mfenderov/sentiscore/internal/events"
	"github.com/mfenderov/sentiscore/internal/processor"
	"github.com/mfenderov/sentiscore/internal/sentiment"
	"github.com/mfenderov/sentiscore/pkg/models"
)

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.Document, error)
}

// Extractor pulls review fragments out of a page.
type Extractor interface {
	Extract(htmlContent string) ([]models.Fragment, error)
	Strategy() string
}

// Publisher receives computed scores for best-effort side effects.
type Publisher interface {
	Publish(evt events.ScoreComputedEvent) bool
}

// Config holds pipeline configuration.
type Config struct {
	URLTemplate string // contains models.KeywordPlaceholder
	Concurrency int    // concurrent scoring calls, 1 = sequential
}

// Pipeline drives fetch -> extract -> score -> aggregate -> publish.
type Pipeline struct {
	config    Config
	fetcher   Fetcher
	extractor Extractor
	scorer    sentiment.Scorer
	publisher Publisher // nil if notifications disabled
	processor *processor.Processor
}

// New creates a Pipeline. publisher may be nil.
func New(config Config, fetcher Fetcher, extractor Extractor, scorer sentiment.Scorer, publisher Publisher) *Pipeline {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Pipeline{
		config:    config,
		fetcher:   fetcher,
		extractor: extractor,
		scorer:    scorer,
		publisher: publisher,
		processor: processor.New(),
	}
}

// TargetURL returns the page URL for an already normalized keyword.
func (p *Pipeline) TargetURL(keyword string) string {
	return models.BuildTargetURL(p.config.URLTemplate, keyword)
}

// Run scores keyword. Any stage failure stops the run and is returned as
// *Error. Notification happens after the score is final and cannot fail Run.
func (p *Pipeline) Run(ctx context.Context, rawKeyword string) (*models.ScoreResult, error) {
	start := time.Now()

	keyword := models.NormalizeKeyword(rawKeyword)
	if keyword == "" {
		return nil, &Error{Kind: KindInvalidRequest, Err: errors.New("missing keyword")}
	}

	url := p.TargetURL(keyword)
	strategy := p.extractor.Strategy()
	fail := func(kind Kind, err error) error {
		return &Error{Kind: kind, Keyword: keyword, URL: url, Strategy: strategy, Err: err}
	}

	slog.Debug("fetching", "keyword", keyword, "url", url)
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fail(KindFetch, err)
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		if title := p.processor.ExtractTitle(doc.Content); title != "" {
			slog.Debug("fetched page", "url", url, "title", title)
		}
	}

	fragments, err := p.extractor.Extract(doc.Content)
	if err != nil {
		return nil, fail(KindNoReviewsFound, err)
	}
	if len(fragments) == 0 {
		return nil, fail(KindNoReviewsFound, ErrNoReviews)
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}

	ratings, err := sentiment.ScoreAll(ctx, p.scorer, texts, p.config.Concurrency)
	if err != nil {
		return nil, fail(KindInference, err)
	}

	score, err := aggregate.Score(ratings)
	if err != nil {
		// Unreachable: fragments is non-empty.
		return nil, fail(KindInference, err)
	}

	result := &models.ScoreResult{
		ID:         uuid.NewString(),
		Keyword:    keyword,
		URL:        url,
		Strategy:   strategy,
		Fragments:  texts,
		Ratings:    ratings,
		Score:      score,
		ComputedAt: time.Now(),
	}

	slog.Info("score computed",
		"id", result.ID,
		"keyword", keyword,
		"fragments", len(ratings),
		"score", score,
		"duration", time.Since(start))

	if p.publisher != nil {
		p.publisher.Publish(events.ScoreComputedEvent{
			ID:        result.ID,
			Keyword:   keyword,
			URL:       url,
			Score:     score,
			Fragments: len(ratings),
			Timestamp: result.ComputedAt,
		})
	}

	return result, nil
}
