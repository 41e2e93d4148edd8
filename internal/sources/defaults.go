package sources

import (
	"log/slog"
	"time"

	"toksmith/internal/config"
	"toksmith/internal/sources/reddit"
	"toksmith/internal/sources/stackoverflow"
	"toksmith/internal/sources/twitter"
)

// NewDefaultRegistry registers the reddit, twitter and stackoverflow adapters
// built from cfg.
func NewDefaultRegistry(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry(
		WithLogger(logger),
		WithConcurrency(cfg.Workers.FetchConcurrency),
		WithFetchTimeout(fetchTimeout(cfg)),
	)

	redditAdapter, err := reddit.New(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		Username:     cfg.Reddit.Username,
		Password:     cfg.Reddit.Password,
		UserAgent:    cfg.Reddit.UserAgent,
		CommentLimit: cfg.Reddit.CommentLimit,
		Timeout:      seconds(cfg.Reddit.TimeoutSeconds),
	})
	if err != nil {
		return nil, err
	}
	registry.Register(redditAdapter)

	registry.Register(twitter.New(twitter.Config{
		BearerToken: cfg.Twitter.BearerToken,
		APIKey:      cfg.Twitter.APIKey,
		APISecret:   cfg.Twitter.APISecret,
		BaseURL:     cfg.Twitter.BaseURL,
		TokenURL:    cfg.Twitter.TokenURL,
		MaxThread:   cfg.Twitter.MaxThread,
		Timeout:     seconds(cfg.Twitter.TimeoutSeconds),
		Logger:      logger,
	}))

	registry.Register(stackoverflow.New(stackoverflow.Config{
		UserAgent:  cfg.StackOverflow.UserAgent,
		MaxAnswers: cfg.StackOverflow.MaxAnswers,
		Timeout:    seconds(cfg.StackOverflow.TimeoutSeconds),
	}))

	return registry, nil
}

// fetchTimeout leaves room for the twitter adapter's two sequential calls.
func fetchTimeout(cfg *config.Config) time.Duration {
	longest := max(cfg.Reddit.TimeoutSeconds, 2*cfg.Twitter.TimeoutSeconds, cfg.StackOverflow.TimeoutSeconds)
	return seconds(longest) + 5*time.Second
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
