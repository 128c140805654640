// internal/common/records/notifier.go
package records

import (
	"context"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/models"
)

// Notifier is the notification sink: it creates user-visible notification
// records. Callers treat delivery as fire-and-forget.
type Notifier struct {
	repo *Repository
}

func NewNotifier(repo *Repository) *Notifier {
	return &Notifier{repo: repo}
}

func (n *Notifier) Notify(ctx context.Context, notification models.Notification) error {
	if notification.RecipientID == "" {
		return apperrors.NewInvalidInputError("notification recipient is required")
	}
	if err := n.repo.Create(ctx, CollectionNotifications, notification, nil); err != nil {
		return apperrors.NewNotificationSendFailedError(notification.Type, err)
	}
	return nil
}
