package enums

import "testing"

func TestTransactionDecisionStatus(t *testing.T) {
	if got := TransactionDecisionApproved.Status(); got != TransactionStatusCompleted {
		t.Fatalf("APPROVED should resolve to COMPLETED, got %s", got)
	}
	if got := TransactionDecisionRejected.Status(); got != TransactionStatusRejected {
		t.Fatalf("REJECTED should resolve to REJECTED, got %s", got)
	}
}

func TestTransactionStatusIsTerminal(t *testing.T) {
	if TransactionStatusPending.IsTerminal() {
		t.Fatalf("PENDING must not be terminal")
	}
	if !TransactionStatusCompleted.IsTerminal() || !TransactionStatusRejected.IsTerminal() {
		t.Fatalf("COMPLETED and REJECTED must be terminal")
	}
}

func TestParseTransactionStatus(t *testing.T) {
	status, err := ParseTransactionStatus("COMPLETED")
	if err != nil || status != TransactionStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s err %v", status, err)
	}
	if _, err := ParseTransactionStatus("completed"); err == nil {
		t.Fatalf("lowercase input should not parse")
	}
}
