package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateTransaction  OutboxAggregateType = "transaction"
	AggregateReservation  OutboxAggregateType = "reservation"
	AggregateInventory    OutboxAggregateType = "inventory_item"
	AggregateUser         OutboxAggregateType = "user"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTransaction,
	AggregateReservation,
	AggregateInventory,
	AggregateUser,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventTransactionCreated   OutboxEventType = "transaction_created"
	EventTransactionCompleted OutboxEventType = "transaction_completed"
	EventTransactionRejected  OutboxEventType = "transaction_rejected"
	EventStockAdjusted        OutboxEventType = "stock_adjusted"
	EventItemCreated          OutboxEventType = "item_created"
	EventItemUpdated          OutboxEventType = "item_updated"
	EventItemDeleted          OutboxEventType = "item_deleted"
	EventReservationCreated   OutboxEventType = "reservation_created"
	EventReservationDecided   OutboxEventType = "reservation_decided"
	EventUserSynced           OutboxEventType = "user_synced"
	EventBorrowOverdue        OutboxEventType = "borrow_overdue"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTransactionCreated,
	EventTransactionCompleted,
	EventTransactionRejected,
	EventStockAdjusted,
	EventItemCreated,
	EventItemUpdated,
	EventItemDeleted,
	EventReservationCreated,
	EventReservationDecided,
	EventUserSynced,
	EventBorrowOverdue,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
