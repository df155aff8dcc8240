package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charset = "UTF-8"

// SESAPI is the subset of the SES v2 client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers mail through Amazon SES.
type SESSender struct {
	api  SESAPI
	from string
}

// NewSESSender creates an SESSender from an AWS configuration.
func NewSESSender(cfg aws.Config, from string) *SESSender {
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), from)
}

// NewSESSenderWithClient creates an SESSender using the given client.
func NewSESSenderWithClient(api SESAPI, from string) *SESSender {
	return &SESSender{api: api, from: from}
}

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charset)}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charset)}
	}

	out, err := s.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	slog.DebugContext(ctx, "email sent", "messageId", aws.ToString(out.MessageId), "recipients", len(msg.To))
	return nil
}
