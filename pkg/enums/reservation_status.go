package enums

import "fmt"

// ReservationStatus maps to the reservation_status enum in Postgres.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusApproved  ReservationStatus = "APPROVED"
	ReservationStatusRejected  ReservationStatus = "REJECTED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCanceled  ReservationStatus = "CANCELED"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
	ReservationStatusRejected,
	ReservationStatusCompleted,
	ReservationStatusCanceled,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical enum.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
