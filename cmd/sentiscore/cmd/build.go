package cmd

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/mfenderov/sentiscore/internal/config"
	"github.com/mfenderov/sentiscore/internal/events"
	"github.com/mfenderov/sentiscore/internal/extractor"
	"github.com/mfenderov/sentiscore/internal/fetcher"
	"github.com/mfenderov/sentiscore/internal/notifier"
	"github.com/mfenderov/sentiscore/internal/pipeline"
	"github.com/mfenderov/sentiscore/internal/sentiment"
)

// app bundles the components every command needs.
type app struct {
	pipeline   *pipeline.Pipeline
	dispatcher *notifier.Dispatcher // nil when notifications are disabled
	failed     atomic.Int64
}

// Close drains pending notifications.
func (a *app) Close() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Close()
	if n := a.failed.Load(); n > 0 {
		slog.Warn("some notifications were not delivered", "failed", n)
	}
}

func (a *app) notificationFailed(evt events.NotificationFailedEvent) {
	a.failed.Add(1)
	slog.Debug("notification failure recorded", "id", evt.ID, "at", evt.Timestamp)
}

// buildApp validates cfg and wires fetcher, extractor, scorer and notifier
// into a pipeline.
func buildApp(cfg config.Config, notify bool) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fetch := fetcher.New(fetcher.Config{
		Timeout:     cfg.Scraper.Timeout,
		UserAgent:   cfg.Scraper.UserAgent,
		MaxBodySize: cfg.Scraper.MaxBodySize,
	})

	strategy, err := extractor.Lookup(cfg.Extractor.Strategy, cfg.Extractor.Tag, cfg.Extractor.ClassPattern)
	if err != nil {
		return nil, err
	}
	extract := extractor.New(strategy, extractor.Config{
		MaxFragments:   cfg.Scraper.MaxFragments,
		RenderMarkdown: cfg.Extractor.RenderMarkdown,
	})

	scorer, err := newScorer(cfg.Sentiment)
	if err != nil {
		return nil, err
	}

	a := &app{}
	var publisher pipeline.Publisher
	if notify && cfg.Notify.Enabled {
		mailer, err := notifier.New(notifier.Config{
			Host:       cfg.Notify.Host,
			Port:       cfg.Notify.Port,
			Username:   cfg.Notify.Username,
			Password:   cfg.Notify.Password,
			From:       cfg.Notify.From,
			Recipients: cfg.Notify.Recipients,
			Timeout:    cfg.Notify.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create notifier: %w", err)
		}
		a.dispatcher = notifier.NewDispatcher(mailer, cfg.Notify.QueueSize, cfg.Notify.Timeout, a.notificationFailed)
		publisher = a.dispatcher
		slog.Info("notifications enabled", "host", cfg.Notify.Host, "recipients", len(cfg.Notify.Recipients))
	}

	a.pipeline = pipeline.New(pipeline.Config{
		URLTemplate: cfg.Target.URLTemplate,
		Concurrency: cfg.Sentiment.Concurrency,
	}, fetch, extract, scorer, publisher)

	slog.Debug("pipeline ready",
		"template", cfg.Target.URLTemplate,
		"strategy", strategy.Name(),
		"backend", cfg.Sentiment.Backend,
	)
	return a, nil
}

func newScorer(cfg config.Sentiment) (sentiment.Scorer, error) {
	switch cfg.Backend {
	case "llm":
		s, err := sentiment.NewLLM(sentiment.LLMConfig{
			SocketPath:    cfg.LLM.SocketPath,
			Model:         cfg.LLM.Model,
			MaxInputChars: cfg.MaxInputChars,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM scorer: %w", err)
		}
		return s, nil
	default:
		s, err := sentiment.NewClassifier(sentiment.ClassifierConfig{
			BaseURL:       cfg.Classifier.BaseURL,
			SocketPath:    cfg.Classifier.SocketPath,
			Model:         cfg.Classifier.Model,
			MaxInputChars: cfg.MaxInputChars,
			Timeout:       cfg.Classifier.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create classifier: %w", err)
		}
		return s, nil
	}
}
