package aggregate

import (
	"errors"

	"github.com/mfenderov/sentiscore/pkg/models"
)

// ScaleFactor maps a 1-5 mean onto the 0-10 scale.
const ScaleFactor = 2

// ErrNoRatings is returned when there is nothing to aggregate.
var ErrNoRatings = errors.New("no ratings to aggregate")

// Mean returns the arithmetic mean of ratings.
func Mean(ratings []models.Rating) (float64, error) {
	if len(ratings) == 0 {
		return 0, ErrNoRatings
	}
	sum := 0
	for _, r := range ratings {
		sum += int(r)
	}
	return float64(sum) / float64(len(ratings)), nil
}

// Score returns mean(ratings) * ScaleFactor.
func Score(ratings []models.Rating) (float64, error) {
	mean, err := Mean(ratings)
	if err != nil {
		return 0, err
	}
	return mean * ScaleFactor, nil
}
