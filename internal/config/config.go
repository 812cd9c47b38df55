package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfenderov/sentiscore/pkg/models"
)

// Config holds all application configuration.
type Config struct {
	Log       Log       `mapstructure:"log"`
	Server    Server    `mapstructure:"server"`
	Target    Target    `mapstructure:"target"`
	Scraper   Scraper   `mapstructure:"scraper"`
	Extractor Extractor `mapstructure:"extractor"`
	Sentiment Sentiment `mapstructure:"sentiment"`
	Notify    Notify    `mapstructure:"notify"`
	MCP       MCP       `mapstructure:"mcp"`
}

// Log holds logging configuration.
type Log struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// Server holds HTTP service configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Target describes where reviews are fetched from.
type Target struct {
	URLTemplate string `mapstructure:"url_template"` // must contain {keyword}
}

// Scraper holds page fetching configuration.
type Scraper struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodySize  int           `mapstructure:"max_body_size"`
	MaxFragments int           `mapstructure:"max_fragments"` // 0 = unlimited
}

// Extractor selects the fragment extraction strategy.
type Extractor struct {
	Strategy       string `mapstructure:"strategy"`
	Tag            string `mapstructure:"tag"`           // custom/v1 only
	ClassPattern   string `mapstructure:"class_pattern"` // custom/v1 only
	RenderMarkdown bool   `mapstructure:"render_markdown"`
}

// Sentiment holds model backend configuration.
type Sentiment struct {
	Backend       string     `mapstructure:"backend"` // classifier or llm
	Concurrency   int        `mapstructure:"concurrency"`
	MaxInputChars int        `mapstructure:"max_input_chars"`
	Classifier    Classifier `mapstructure:"classifier"`
	LLM           LLM        `mapstructure:"llm"`
}

// Classifier points at a text-classification inference server.
type Classifier struct {
	BaseURL    string        `mapstructure:"base_url"`
	SocketPath string        `mapstructure:"socket_path"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LLM holds chat-completions scoring configuration.
type LLM struct {
	SocketPath string `mapstructure:"socket_path"`
	Model      string `mapstructure:"model"`
}

// Notify holds e-mail notification configuration.
type Notify struct {
	Enabled    bool          `mapstructure:"enabled"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	From       string        `mapstructure:"from"`
	Recipients []string      `mapstructure:"recipients"`
	Timeout    time.Duration `mapstructure:"timeout"`
	QueueSize  int           `mapstructure:"queue_size"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Log: Log{
			Level: "info",
		},
		Server: Server{
			Addr:            ":8000",
			AllowedOrigins:  []string{"http://localhost:3000"},
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Target: Target{
			URLTemplate: "https://www.yelp.com/biz/" + models.KeywordPlaceholder,
		},
		Scraper: Scraper{
			Timeout:      30 * time.Second,
			UserAgent:    "sentiscore/1.0",
			MaxBodySize:  10 * 1024 * 1024,
			MaxFragments: 50,
		},
		Extractor: Extractor{
			Strategy: "comment-class/v1",
		},
		Sentiment: Sentiment{
			Backend:       "classifier",
			Concurrency:   1,
			MaxInputChars: 2000, // ~512 tokens for the BERT sentiment model
			Classifier: Classifier{
				BaseURL: "http://localhost:8080",
				Model:   "nlptown/bert-base-multilingual-uncased-sentiment",
				Timeout: 30 * time.Second,
			},
			LLM: LLM{
				SocketPath: "", // User must provide their Docker socket path
				Model:      "ai/gemma3",
			},
		},
		Notify: Notify{
			Enabled:   false,
			Host:      "smtp.gmail.com",
			Port:      465,
			Timeout:   30 * time.Second,
			QueueSize: 16,
		},
		MCP: MCP{
			Name:    "sentiscore",
			Version: "1.0.0",
		},
	}
}

// Validate checks the configuration once at startup.
func (c Config) Validate() error {
	if !strings.Contains(c.Target.URLTemplate, models.KeywordPlaceholder) {
		return fmt.Errorf("target.url_template must contain %s", models.KeywordPlaceholder)
	}
	if c.Scraper.MaxFragments < 0 {
		return fmt.Errorf("scraper.max_fragments cannot be negative")
	}
	if c.Sentiment.Concurrency <= 0 {
		return fmt.Errorf("sentiment.concurrency must be positive")
	}

	switch c.Sentiment.Backend {
	case "classifier":
		if c.Sentiment.Classifier.BaseURL == "" && c.Sentiment.Classifier.SocketPath == "" {
			return fmt.Errorf("sentiment.classifier needs base_url or socket_path")
		}
	case "llm":
		if c.Sentiment.LLM.SocketPath == "" {
			return fmt.Errorf("sentiment.llm.socket_path is required for the llm backend")
		}
	default:
		return fmt.Errorf("unknown sentiment backend %q", c.Sentiment.Backend)
	}

	if c.Notify.Enabled {
		if c.Notify.Password == "" {
			return fmt.Errorf("notify.password (EMAIL_PASSWORD) is required when notifications are enabled")
		}
		if c.Notify.Host == "" {
			return fmt.Errorf("notify.host is required when notifications are enabled")
		}
		if c.Notify.From == "" {
			return fmt.Errorf("notify.from is required when notifications are enabled")
		}
		if len(c.Notify.Recipients) == 0 {
			return fmt.Errorf("notify.recipients must contain at least one address")
		}
	}

	return nil
}
