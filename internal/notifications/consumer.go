package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/idempotency"
	"github.com/iodacademy/lendstock-backend/pkg/outbox/payloads"
)

const domainNotificationConsumer = "domain-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type settingsReader interface {
	Get(ctx context.Context) (*models.SystemSetting, error)
}

// Consumer turns committed domain events into in-app notification rows.
// It runs outside the workflow transaction on purpose: a notification
// failure can never roll back a stock mutation.
type Consumer struct {
	repo         repository
	settings     settingsReader
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a domain notification consumer.
func NewConsumer(repo repository, settings settingsReader, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		settings:     settings,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	builder, ok := c.builderFor(eventType)
	if !ok {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		return processResult{ack: true}
	}

	notification, err := builder(ctx, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "notification build failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "notification insert failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	c.logg.Info(logCtx, "notification created")
	return processResult{ack: true}
}

type notificationBuilder func(ctx context.Context, data json.RawMessage) (*models.Notification, error)

func (c *Consumer) builderFor(eventType enums.OutboxEventType) (notificationBuilder, bool) {
	switch eventType {
	case enums.EventTransactionCreated:
		return c.transactionCreated, true
	case enums.EventTransactionCompleted, enums.EventTransactionRejected:
		return c.transactionDecided, true
	case enums.EventReservationDecided:
		return c.reservationDecided, true
	case enums.EventBorrowOverdue:
		return c.borrowOverdue, true
	default:
		return nil, false
	}
}

func (c *Consumer) transactionCreated(ctx context.Context, data json.RawMessage) (*models.Notification, error) {
	var payload payloads.TransactionRecordedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	// Only pending requests produce a submission notice.
	if payload.Status != enums.TransactionStatusPending {
		return nil, nil
	}
	link := fmt.Sprintf("/transactions/%s", payload.TransactionID)
	return &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeTransactionSubmitted,
		Title:   "Borrow request submitted",
		Message: "Your borrow request is waiting for admin approval.",
		Link:    &link,
	}, nil
}

func (c *Consumer) transactionDecided(ctx context.Context, data json.RawMessage) (*models.Notification, error) {
	var payload payloads.TransactionDecidedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("/transactions/%s", payload.TransactionID)
	title := "Borrow request approved"
	message := "Your borrow request was approved. You can pick the item up."
	if payload.Status == enums.TransactionStatusRejected {
		title = "Borrow request rejected"
		message = "Your borrow request was rejected by an admin."
	}
	return &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeTransactionDecided,
		Title:   title,
		Message: message,
		Link:    &link,
	}, nil
}

func (c *Consumer) reservationDecided(ctx context.Context, data json.RawMessage) (*models.Notification, error) {
	var payload payloads.ReservationDecidedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("/reservations/%s", payload.ReservationID)
	title := "Reservation updated"
	message := fmt.Sprintf("Your reservation is now %s.", payload.Status)
	if payload.Status == enums.ReservationStatusRejected && payload.RejectionReason != nil {
		message = fmt.Sprintf("Your reservation was rejected: %s", *payload.RejectionReason)
	}
	return &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeReservationDecided,
		Title:   title,
		Message: message,
		Link:    &link,
	}, nil
}

func (c *Consumer) borrowOverdue(ctx context.Context, data json.RawMessage) (*models.Notification, error) {
	var payload payloads.BorrowOverdueEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	message := fmt.Sprintf(
		"The item you borrowed on %s is overdue (limit %d days). Please return it.",
		payload.BorrowedAt.Format(time.DateOnly), payload.OverdueDays,
	)

	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.UserID,
		Type:    enums.NotificationTypeOverdueReminder,
		Title:   "Borrowed item overdue",
		Message: message,
	}

	setting, err := c.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if link := BuildWhatsAppLink(setting.CompanyWhatsapp, message); link != "" {
		notification.Link = &link
	}
	return notification, nil
}
