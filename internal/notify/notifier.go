// Package notify delivers user-facing notifications over MQTT.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stove_automation/internal/models"
	"stove_automation/internal/repository"
)

var ErrNoRecipient = errors.New("notification recipient is empty")

// Notifier publishes notifications honouring the recipient's preferences.
// A nil publisher means no broker is configured and every call is skipped.
type Notifier struct {
	pub   Publisher
	store repository.StateStore
	now   func() time.Time
}

func NewNotifier(pub Publisher, store repository.StateStore) *Notifier {
	return &Notifier{pub: pub, store: store, now: time.Now}
}

type message struct {
	models.Notification
	UserID string `json:"userId"`
	SentAt int64  `json:"sentAt"`
}

// Notify publishes n to notifications/{userID}.
func (n *Notifier) Notify(ctx context.Context, userID string, msg models.Notification) (models.NotifyOutcome, error) {
	if userID == "" {
		return models.NotifySkipped, ErrNoRecipient
	}
	if n.pub == nil {
		return models.NotifySkipped, nil
	}

	enabled, err := n.categoryEnabled(ctx, userID, msg.Category)
	if err != nil {
		return "", err
	}
	if !enabled {
		return models.NotifySkipped, nil
	}

	payload := message{Notification: msg, UserID: userID, SentAt: n.now().UnixMilli()}
	if err := n.pub.Publish("notifications/"+userID, payload, false); err != nil {
		return "", fmt.Errorf("notify %s: %w", msg.Category, err)
	}
	return models.NotifySent, nil
}

// categoryEnabled reads users/{uid}/notificationPreferences. Categories are
// enabled unless explicitly set to false.
func (n *Notifier) categoryEnabled(ctx context.Context, userID, category string) (bool, error) {
	if n.store == nil || category == "" {
		return true, nil
	}
	raw, err := n.store.Get(ctx, repository.Join("users", userID, "notificationPreferences"))
	if err != nil {
		return false, fmt.Errorf("load notification preferences: %w", err)
	}
	prefs := map[string]bool{}
	if _, err := repository.Decode(raw, &prefs); err != nil {
		return false, err
	}
	if v, ok := prefs[category]; ok {
		return v, nil
	}
	return true, nil
}
