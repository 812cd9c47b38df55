package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. Callers expose a single generic message
// externally and log the kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRequest
	KindFetch
	KindNoReviewsFound
	KindInference
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindFetch:
		return "FetchError"
	case KindNoReviewsFound:
		return "NoReviewsFoundError"
	case KindInference:
		return "InferenceError"
	case KindNotification:
		return "NotificationError"
	default:
		return "UnknownError"
	}
}

// ErrNoReviews is wrapped by KindNoReviewsFound errors.
var ErrNoReviews = errors.New("no reviews found")

// Error is a failed pipeline stage.
type Error struct {
	Kind     Kind
	Keyword  string
	URL      string
	Strategy string
	Err      error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s for %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown if err is not a pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
