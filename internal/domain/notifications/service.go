package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store StoreAPI
	// Mailer is optional; a nil mailer means in-app notifications only.
	Mailer Mailer
	From   string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, Mailer: mailer, From: from}
}

// Notify writes the in-app row and sends the email best effort. A failed
// email never fails the triggering request.
func (s *Service) Notify(ctx context.Context, orgID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, orgID, userID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.UserEmail(ctx, orgID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListNotifications(ctx, orgID, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, orgID, userID string) (int, error) {
	return s.store.CountUnread(ctx, orgID, userID)
}

func (s *Service) MarkRead(ctx context.Context, orgID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, orgID, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, orgID, userID string) error {
	return s.store.MarkAllRead(ctx, orgID, userID)
}
