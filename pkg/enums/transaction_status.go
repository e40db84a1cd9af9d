package enums

import "fmt"

// TransactionStatus maps to the transaction_status enum in Postgres.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusCompleted,
	TransactionStatusRejected,
}

// String implements fmt.Stringer.
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical enum.
func (s TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusRejected
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}

// TransactionDecision is the reviewer verdict applied to a pending
// transaction. APPROVED resolves to COMPLETED.
type TransactionDecision string

const (
	TransactionDecisionApproved TransactionDecision = "APPROVED"
	TransactionDecisionRejected TransactionDecision = "REJECTED"
)

var validTransactionDecisions = []TransactionDecision{
	TransactionDecisionApproved,
	TransactionDecisionRejected,
}

// IsValid reports whether the value is a known TransactionDecision.
func (d TransactionDecision) IsValid() bool {
	for _, candidate := range validTransactionDecisions {
		if candidate == d {
			return true
		}
	}
	return false
}

// Status resolves the decision to the status it produces.
func (d TransactionDecision) Status() TransactionStatus {
	if d == TransactionDecisionApproved {
		return TransactionStatusCompleted
	}
	return TransactionStatusRejected
}

// ParseTransactionDecision converts raw input into a TransactionDecision.
func ParseTransactionDecision(value string) (TransactionDecision, error) {
	for _, candidate := range validTransactionDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction decision %q", value)
}
