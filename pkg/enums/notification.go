package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeTransactionSubmitted NotificationType = "transaction_submitted"
	NotificationTypeTransactionDecided   NotificationType = "transaction_decided"
	NotificationTypeReservationSubmitted NotificationType = "reservation_submitted"
	NotificationTypeReservationDecided   NotificationType = "reservation_decided"
	NotificationTypeOverdueReminder      NotificationType = "overdue_reminder"
	NotificationTypeSystemAnnouncement   NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeTransactionSubmitted,
	NotificationTypeTransactionDecided,
	NotificationTypeReservationSubmitted,
	NotificationTypeReservationDecided,
	NotificationTypeOverdueReminder,
	NotificationTypeSystemAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
