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
	"strings"

	"github.com/mfenderov/sentiscore/pkg/models"
)

// Docker Model Runner's OpenAI-compatible endpoint behind the engine socket.
const modelRunnerChatURL = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1/chat/completions"

const ratingInstructions = `You rate customer reviews. Answer with a single digit from 1 to 5,
where 1 is very negative and 5 is very positive. No other text.`

// LLMConfig holds LLM client configuration.
type LLMConfig struct {
	SocketPath    string // Unix socket path for Docker Model Runner
	Model         string // Model name (e.g., "ai/gemma3")
	MaxInputChars int
}

// LLM rates fragments by prompting a chat model served by Docker Model Runner.
type LLM struct {
	httpClient    *http.Client
	model         string
	maxInputChars int
}

// NewLLM creates a new LLM scorer.
func NewLLM(config LLMConfig) (*LLM, error) {
	if config.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", config.SocketPath)
		},
	}

	return &LLM{
		httpClient:    &http.Client{Transport: transport},
		model:         config.Model,
		maxInputChars: config.MaxInputChars,
	}, nil
}

type ratingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ratingRequest asks for a deterministic, one-token answer.
type ratingRequest struct {
	Model       string          `json:"model"`
	Messages    []ratingMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type ratingChoice struct {
	Message ratingMessage `json:"message"`
}

type ratingResponse struct {
	Choices []ratingChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Score sends the fragment as the user turn and parses the model's digit.
func (c *LLM) Score(ctx context.Context, text string) (models.Rating, error) {
	text = truncate(text, c.maxInputChars)
	slog.Debug("rating fragment with LLM", "model", c.model, "len", len(text))

	payload, err := json.Marshal(ratingRequest{
		Model: c.model,
		Messages: []ratingMessage{
			{Role: "system", Content: ratingInstructions},
			{Role: "user", Content: text},
		},
		MaxTokens:   2,
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal rating request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, modelRunnerChatURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create rating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model runner unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read rating response: %w", err)
	}

	var out ratingResponse
	decodeErr := json.Unmarshal(raw, &out)
	switch {
	case decodeErr == nil && out.Error != nil:
		return 0, fmt.Errorf("model runner error (status %d): %s", resp.StatusCode, out.Error.Message)
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("model runner error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	case decodeErr != nil:
		return 0, fmt.Errorf("failed to decode rating response: %w", decodeErr)
	case len(out.Choices) == 0:
		return 0, fmt.Errorf("%w: model returned no choices", ErrInvalidRating)
	}

	return parseRating(out.Choices[0].Message.Content)
}

// ratingToken matches a standalone 1-5 digit, so "10" or "25" never count.
var ratingToken = regexp.MustCompile(`\b([1-5])\b`)

func parseRating(answer string) (models.Rating, error) {
	m := ratingToken.FindStringSubmatch(answer)
	if m == nil {
		return 0, fmt.Errorf("%w: model answered %q", ErrInvalidRating, strings.TrimSpace(answer))
	}
	return models.Rating(m[1][0] - '0'), nil
}
