package sentiment

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mfenderov/sentiscore/pkg/models"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidRating is returned when a model answer cannot be mapped to a
// rating in [models.MinRating, models.MaxRating].
var ErrInvalidRating = errors.New("invalid rating")

// Scorer rates the sentiment of a single text fragment.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, text string) (models.Rating, error)
}

// ScoreAll rates every text, keeping input order. At most concurrency calls
// are in flight; 1 scores strictly sequentially. The first failure stops
// scheduling further calls.
func ScoreAll(ctx context.Context, s Scorer, texts []string, concurrency int) ([]models.Rating, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	ratings := make([]models.Rating, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := s.Score(gctx, text)
			if err != nil {
				return fmt.Errorf("fragment %d: %w", i, err)
			}
			if !r.Valid() {
				return fmt.Errorf("fragment %d: %w: %d", i, ErrInvalidRating, r)
			}
			ratings[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ratings, nil
}

// truncate cuts text to at most max runes. max <= 0 disables truncation.
func truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}
