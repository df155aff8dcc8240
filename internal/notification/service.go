package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/mail"
)

// Directory resolves a username to its user record.
type Directory interface {
	GetByUsername(ctx context.Context, username string) (*auth.User, error)
}

// Service creates notifications and mails them on request.
type Service struct {
	repo   Repository
	users  Directory
	sender mail.Sender
}

// NewService creates a notification Service.
func NewService(repo Repository, users Directory, sender mail.Sender) *Service {
	return &Service{repo: repo, users: users, sender: sender}
}

// Repository returns the underlying store.
func (s *Service) Repository() Repository {
	return s.repo
}

// Send stores the notification. When sendEmail is set it also mails the
// recipient's registered address; a delivery failure is logged and reported
// as emailed=false without undoing the stored notification.
func (s *Service) Send(ctx context.Context, n *Notification, sendEmail bool) (emailed bool, err error) {
	if err := s.repo.Create(ctx, n); err != nil {
		return false, err
	}
	if !sendEmail {
		return false, nil
	}

	if err := s.email(ctx, n); err != nil {
		slog.WarnContext(ctx, "notification email not sent", "username", n.Username, "id", n.ID, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *Service) email(ctx context.Context, n *Notification) error {
	u, err := s.users.GetByUsername(ctx, n.Username)
	if err != nil {
		return fmt.Errorf("looking up recipient: %w", err)
	}
	if u.Email == "" {
		return fmt.Errorf("user %s has no email address", n.Username)
	}
	return s.sender.Send(ctx, mail.Message{
		To:      []string{u.Email},
		Subject: n.Title,
		Text:    n.Message,
	})
}
