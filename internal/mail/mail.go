// Package mail sends plain-text and HTML email.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Supported MAIL_DRIVER values.
const (
	DriverLog = "log"
	DriverSES = "ses"
)

// ErrNoRecipients is returned when a message has no To addresses.
var ErrNoRecipients = errors.New("message has no recipients")

// ErrEmptyMessage is returned when a message has neither text nor HTML body.
var ErrEmptyMessage = errors.New("message has no body")

// Message is an outbound email.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Validate checks that the message can be sent.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.HTML) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the Sender selected by driver.
func New(driver string, cfg aws.Config, from string) (Sender, error) {
	switch driver {
	case DriverLog, "":
		return NewLogSender(slog.Default()), nil
	case DriverSES:
		if from == "" {
			return nil, errors.New("MAIL_FROM is required for the ses driver")
		}
		return NewSESSender(cfg, from), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", driver)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email not delivered (log driver)",
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
	)
	return nil
}
