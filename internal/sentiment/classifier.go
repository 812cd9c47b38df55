package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mfenderov/sentiscore/pkg/models"
)

// ClassifierConfig holds classifier client configuration.
type ClassifierConfig struct {
	BaseURL       string // e.g. "http://localhost:8080"
	SocketPath    string // unix socket, takes precedence over BaseURL
	Model         string // informational, the server hosts a single model
	MaxInputChars int    // fragments are truncated to this many runes
	Timeout       time.Duration
}

// Classifier calls a text-classification inference server (the
// text-embeddings-inference /predict API) hosting a 5-class sentiment model
// such as nlptown/bert-base-multilingual-uncased-sentiment.
type Classifier struct {
	httpClient    *http.Client
	endpoint      string
	model         string
	maxInputChars int
}

// NewClassifier creates a new classifier client.
func NewClassifier(config ClassifierConfig) (*Classifier, error) {
	if config.BaseURL == "" && config.SocketPath == "" {
		return nil, fmt.Errorf("base URL or socket path is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	endpoint := strings.TrimSuffix(config.BaseURL, "/") + "/predict"

	if config.SocketPath != "" {
		httpClient.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", config.SocketPath)
			},
		}
		endpoint = "http://localhost/predict"
	}

	return &Classifier{
		httpClient:    httpClient,
		endpoint:      endpoint,
		model:         config.Model,
		maxInputChars: config.MaxInputChars,
	}, nil
}

// predictRequest is the request payload for the predict API.
type predictRequest struct {
	Inputs    string `json:"inputs"`
	Truncate  bool   `json:"truncate"`
	RawScores bool   `json:"raw_scores"`
}

// prediction is one class of the predict API response.
type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// predictError is the error body returned by the predict API.
type predictError struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// Score runs one forward pass and maps the arg-max class to a rating.
func (c *Classifier) Score(ctx context.Context, text string) (models.Rating, error) {
	originalLen := len(text)
	text = truncate(text, c.maxInputChars)
	slog.Debug("classifying fragment", "model", c.model, "original_len", originalLen, "truncated_len", len(text))

	// Logits are enough for the arg-max.
	body, err := json.Marshal(predictRequest{Inputs: text, Truncate: true, RawScores: true})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr predictError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return 0, fmt.Errorf("API error (status %d, %s): %s", resp.StatusCode, apiErr.ErrorType, apiErr.Error)
		}
		return 0, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var predictions []prediction
	if err := json.Unmarshal(respBody, &predictions); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(predictions) == 0 {
		return 0, fmt.Errorf("no prediction returned")
	}

	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}

	return RatingFromLabel(best.Label)
}

var (
	starLabel  = regexp.MustCompile(`^\s*(\d+)\s*stars?\s*$`)
	indexLabel = regexp.MustCompile(`^LABEL_(\d+)$`)
)

// RatingFromLabel maps a classifier label to a rating. "N star(s)" labels
// carry the rating directly; generic "LABEL_i" labels are class indices and
// are offset by one.
func RatingFromLabel(label string) (models.Rating, error) {
	var r int
	switch {
	case starLabel.MatchString(label):
		r, _ = strconv.Atoi(starLabel.FindStringSubmatch(label)[1])
	case indexLabel.MatchString(label):
		idx, _ := strconv.Atoi(indexLabel.FindStringSubmatch(label)[1])
		r = idx + 1
	default:
		return 0, fmt.Errorf("%w: unrecognized label %q", ErrInvalidRating, label)
	}

	rating := models.Rating(r)
	if !rating.Valid() {
		return 0, fmt.Errorf("%w: label %q out of range", ErrInvalidRating, label)
	}
	return rating, nil
}
