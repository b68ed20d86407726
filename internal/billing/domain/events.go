package domain

import "time"

// Kafka topics for billing events.
const (
	TopicContractSigned    = "caseops.contract.signed"
	TopicContractCancelled = "caseops.contract.cancelled"
	TopicPaymentConfirmed  = "caseops.payment.confirmed"
)

// ContractSignedEvent is published once per signature, from the same
// transaction that generated the installment schedule.
type ContractSignedEvent struct {
	ContractID   string    `json:"contract_id"`
	CaseID       string    `json:"case_id"`
	Installments int       `json:"installments"`
	ActorID      string    `json:"actor_id"`
	At           time.Time `json:"at"`
}

// ContractCancelledEvent is published on cancellation.
type ContractCancelledEvent struct {
	ContractID string    `json:"contract_id"`
	CaseID     string    `json:"case_id"`
	Reason     string    `json:"reason"`
	ActorID    string    `json:"actor_id"`
	At         time.Time `json:"at"`
}

// PaymentConfirmedEvent is published when an installment settles.
type PaymentConfirmedEvent struct {
	PaymentID         string    `json:"payment_id"`
	ContractID        string    `json:"contract_id"`
	InstallmentNumber int       `json:"installment_number"`
	ActorID           string    `json:"actor_id"`
	At                time.Time `json:"at"`
}
