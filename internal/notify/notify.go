package notify

import "context"

// ActionButton is a clickable action attached to a chat message.
type ActionButton struct {
	Label string
	URL   string
}

// EmailSender delivers an HTML email. Implementations log and return nil
// when the underlying transport is unconfigured.
type EmailSender interface {
	Email(ctx context.Context, recipients []string, subject, htmlBody string) error
}

// ChatSender posts a summary with action buttons to a chat channel.
// Implementations log and return nil when the transport is unconfigured.
type ChatSender interface {
	Chat(ctx context.Context, channel, summary string, buttons []ActionButton) error
}
