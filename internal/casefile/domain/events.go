package domain

import "time"

// Kafka topics for case events.
const (
	TopicCaseStatusChanged = "caseops.case.status-changed"
	TopicCaseSuspended     = "caseops.case.suspended"
	TopicCaseReactivated   = "caseops.case.reactivated"
	TopicDocumentReviewed  = "caseops.document.reviewed"
)

// CaseStatusChangedEvent is published after every applied transition.
type CaseStatusChangedEvent struct {
	CaseID  string          `json:"case_id"`
	From    TechnicalStatus `json:"from"`
	To      TechnicalStatus `json:"to"`
	ActorID string          `json:"actor_id"`
	At      time.Time       `json:"at"`
}

// CaseSuspensionEvent is published when a case is frozen or reactivated.
type CaseSuspensionEvent struct {
	CaseID     string    `json:"case_id"`
	ContractID string    `json:"contract_id"`
	Reason     string    `json:"reason,omitempty"`
	ActorID    string    `json:"actor_id"`
	At         time.Time `json:"at"`
}

// DocumentReviewedEvent is published on approval or rejection.
type DocumentReviewedEvent struct {
	CaseID     string         `json:"case_id"`
	DocumentID string         `json:"document_id"`
	TypeCode   string         `json:"type_code"`
	Status     DocumentStatus `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	ActorID    string         `json:"actor_id"`
	At         time.Time      `json:"at"`
}
