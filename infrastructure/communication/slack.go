package communication

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Alerter posts operational messages for humans.
type Alerter interface {
	Info(ctx context.Context, message string) error
	Error(ctx context.Context, message string) error
}

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, message)
}

func (s *Slack) Error(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.ErrorChannelID, message)
}

// LogAlerter writes alerts to the log when Slack is not configured.
type LogAlerter struct {
	Log zerolog.Logger
}

func (l LogAlerter) Info(_ context.Context, message string) error {
	l.Log.Info().Str("alert", "info").Msg(message)
	return nil
}

func (l LogAlerter) Error(_ context.Context, message string) error {
	l.Log.Error().Str("alert", "error").Msg(message)
	return nil
}

// NewAlerter returns Slack when a bot token is set, the log otherwise.
func NewAlerter(token string, options SlackOption, log zerolog.Logger) Alerter {
	if token == "" {
		return LogAlerter{Log: log}
	}
	return NewSlack(token, options)
}
