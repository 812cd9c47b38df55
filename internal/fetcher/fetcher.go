package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mfenderov/sentiscore/pkg/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrStatus marks a response with a non-2xx status code.
var ErrStatus = errors.New("unexpected status")

// Error describes a failed fetch. StatusCode is 0 for network failures.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds fetcher configuration.
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int // bytes, 0 keeps the colly default
}

// Fetcher issues a single GET per call and returns the page body.
type Fetcher struct {
	config    Config
	transport http.RoundTripper
}

// New creates a new Fetcher with the given configuration.
func New(config Config) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "sentiscore/1.0"
	}
	return &Fetcher{
		config:    config,
		transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Fetch retrieves url. It does not follow links and does not retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Document, error) {
	var (
		doc       *models.Document
		status    int
		cancelled bool
	)

	opts := []colly.CollectorOption{
		colly.MaxDepth(1),
		colly.UserAgent(f.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	}
	if f.config.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(f.config.MaxBodySize))
	}

	c := colly.NewCollector(opts...)
	c.WithTransport(contextTransport{ctx: ctx, next: f.transport})
	c.SetRequestTimeout(f.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("fetch cancelled", "url", r.URL.String())
			r.Abort()
			cancelled = true
		}
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		doc = &models.Document{
			URL:         r.Request.URL.String(),
			Content:     string(r.Body),
			ContentType: r.Headers.Get("Content-Type"),
			StatusCode:  r.StatusCode,
			FetchedAt:   time.Now(),
		}
		slog.Debug("fetched page", "url", doc.URL, "status", status, "size", len(r.Body))
	})

	// Only transport failures land here; every status reaches OnResponse.
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		slog.Debug("fetch error", "url", url, "status", status, "error", err)
	})

	visitErr := c.Visit(url)

	if cancelled {
		return nil, &Error{URL: url, Err: ctx.Err()}
	}
	if status != 0 && (status < 200 || status > 299) {
		return nil, &Error{
			URL:        url,
			StatusCode: status,
			Err:        fmt.Errorf("%w: %s", ErrStatus, http.StatusText(status)),
		}
	}
	if visitErr != nil {
		return nil, &Error{URL: url, StatusCode: status, Err: visitErr}
	}
	if doc == nil {
		return nil, &Error{URL: url, Err: errors.New("no response received")}
	}

	return doc, nil
}

// contextTransport binds ctx to every request so cancelling ctx aborts an
// in-flight fetch.
type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}
