package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/slack-go/slack"

	"github.com/auditlens/seo-audit/internal/logging"
)

// SlackConfig holds chat transport configuration.
type SlackConfig struct {
	Token   string
	Channel string
}

// NewSlackConfig creates chat configuration from environment variables.
func NewSlackConfig() *SlackConfig {
	return &SlackConfig{
		Token:   os.Getenv("SLACK_BOT_TOKEN"),
		Channel: os.Getenv("SLACK_CHANNEL"),
	}
}

// SlackSender implements ChatSender against the Slack web API.
type SlackSender struct {
	cfg *SlackConfig
	api *slack.Client
	log *logging.Logger
}

// NewSlackSender creates a new chat sender.
func NewSlackSender(cfg *SlackConfig) *SlackSender {
	if cfg == nil {
		cfg = NewSlackConfig()
	}
	s := &SlackSender{
		cfg: cfg,
		log: logging.Default().WithComponent("slack"),
	}
	if cfg.Token != "" {
		s.api = slack.New(cfg.Token)
	}
	return s
}

// Chat posts the summary with link buttons. When the token or channel is
// unconfigured the message is logged and dropped instead of failing.
func (s *SlackSender) Chat(ctx context.Context, channel, summary string, buttons []ActionButton) error {
	if channel == "" {
		channel = s.cfg.Channel
	}
	if s.api == nil || channel == "" {
		s.log.Info("Slack not configured, skipping chat notification", "summary", summary)
		return nil
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, summary, false, false),
			nil, nil,
		),
	}

	if len(buttons) > 0 {
		elements := make([]slack.BlockElement, 0, len(buttons))
		for i, btn := range buttons {
			el := slack.NewButtonBlockElement(
				fmt.Sprintf("action_%d", i),
				btn.URL,
				slack.NewTextBlockObject(slack.PlainTextType, btn.Label, false, false),
			)
			el.URL = btn.URL
			elements = append(elements, el)
		}
		blocks = append(blocks, slack.NewActionBlock("audit_actions", elements...))
	}

	_, _, err := s.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(summary, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return fmt.Errorf("failed to post chat message: %w", err)
	}

	s.log.Info("chat notification sent", "channel", channel)
	return nil
}
