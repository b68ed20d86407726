// Package domain holds the case aggregate, its documents and authority
// requirements, and the rules governing how they change.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// CaseFile is the aggregate root for one unit of immigration casework. It is
// created when an opportunity converts, mutated only through the state
// machine and the suspension controller, and never deleted.
type CaseFile struct {
	gorm.Model
	CaseID        string      `gorm:"column:case_id;type:varchar(36);uniqueIndex;not null" json:"case_id"`
	OpportunityID string      `gorm:"column:opportunity_id;type:varchar(36);index;not null" json:"opportunity_id"`
	Sector        string      `gorm:"column:sector;type:varchar(64)" json:"sector"`
	ServiceType   ServiceType `gorm:"column:service_type;type:varchar(20);not null" json:"service_type"`

	TechnicalStatus TechnicalStatus `gorm:"column:technical_status;type:varchar(32);index;not null" json:"technical_status"`

	TechnicianID string   `gorm:"column:technician_id;type:varchar(36);index" json:"technician_id"`
	ClientRef    string   `gorm:"column:client_ref;type:varchar(64)" json:"client_ref"`
	Priority     Priority `gorm:"column:priority;type:varchar(12);not null;default:'NORMAL'" json:"priority"`
	Urgent       bool     `gorm:"column:urgent;default:false" json:"urgent"`

	ExpectedProtocolAt *time.Time `gorm:"column:expected_protocol_at" json:"expected_protocol_at"`
	ProtocolAt         *time.Time `gorm:"column:protocol_at" json:"protocol_at"`
	ProtocolNumber     string     `gorm:"column:protocol_number;type:varchar(64)" json:"protocol_number"`
	// Expediente is the authority's own case number.
	Expediente string `gorm:"column:expediente;type:varchar(64)" json:"expediente"`

	FirstContactAt *time.Time `gorm:"column:first_contact_at" json:"first_contact_at"`

	// DocumentsReleased flags that the checklist for the service type has
	// already been instantiated; entering document collection again must not
	// duplicate it.
	DocumentsReleased bool `gorm:"column:documents_released;default:false" json:"documents_released"`

	// Partial document approval is a recorded staff override of the document
	// gate, not a silent bypass.
	PartialDocsApproved   bool       `gorm:"column:partial_docs_approved;default:false" json:"partial_docs_approved"`
	PartialDocsApprovedBy string     `gorm:"column:partial_docs_approved_by;type:varchar(36)" json:"partial_docs_approved_by"`
	PartialDocsApprovedAt *time.Time `gorm:"column:partial_docs_approved_at" json:"partial_docs_approved_at"`

	// Appeal sub-state, entered from the DENEGADO branch.
	ResourceStatus   ResourceStatus `gorm:"column:resource_status;type:varchar(16)" json:"resource_status"`
	ResourceDeadline *time.Time     `gorm:"column:resource_deadline" json:"resource_deadline"`
	ResourceNotes    string         `gorm:"column:resource_notes;type:text" json:"resource_notes"`

	// Suspension is orthogonal to the technical status: a suspended case
	// keeps its status but is read-only to normal transitions.
	IsSuspended      bool       `gorm:"column:is_suspended;index;default:false" json:"is_suspended"`
	SuspendedAt      *time.Time `gorm:"column:suspended_at" json:"suspended_at"`
	SuspensionReason string     `gorm:"column:suspension_reason;type:varchar(255)" json:"suspension_reason"`

	DecisionAt     *time.Time     `gorm:"column:decision_at" json:"decision_at"`
	DecisionResult DecisionResult `gorm:"column:decision_result;type:varchar(16);default:'EM_ANDAMENTO'" json:"decision_result"`

	// Version backs the optimistic check-and-set on saves.
	Version int64 `gorm:"column:version;not null;default:0" json:"version"`
}

// TableName maps the aggregate to its table.
func (CaseFile) TableName() string { return "case_files" }

// NewCaseFile converts an opportunity into a fresh case at CONTATO_INICIAL.
func NewCaseFile(caseID, opportunityID, sector string, serviceType ServiceType) *CaseFile {
	return &CaseFile{
		CaseID:          caseID,
		OpportunityID:   opportunityID,
		Sector:          sector,
		ServiceType:     serviceType,
		TechnicalStatus: StatusContatoInicial,
		Priority:        PriorityNormal,
		DecisionResult:  DecisionEmAndamento,
	}
}

// IsTerminal reports whether the case reached a final status.
func (cf *CaseFile) IsTerminal() bool {
	return cf.TechnicalStatus.IsTerminal()
}

// TransitionTo moves the case along a legal edge. Suspension and adjacency
// are checked here; preconditions and side effects belong to the state
// machine service, which sees the documents and requirements.
func (cf *CaseFile) TransitionTo(target TechnicalStatus) error {
	if cf.IsSuspended {
		return ErrCaseSuspended
	}
	if !target.Valid() || !cf.TechnicalStatus.CanTransitionTo(target) {
		return &TransitionError{From: cf.TechnicalStatus, To: target}
	}
	cf.TechnicalStatus = target
	return nil
}

// RecordFirstContact stamps the first client contact once.
func (cf *CaseFile) RecordFirstContact(now time.Time) {
	if cf.FirstContactAt == nil {
		t := now
		cf.FirstContactAt = &t
	}
}

// RecordProtocol stamps the authority filing.
func (cf *CaseFile) RecordProtocol(number, expediente string, now time.Time) {
	t := now
	cf.ProtocolAt = &t
	if number != "" {
		cf.ProtocolNumber = number
	}
	if expediente != "" {
		cf.Expediente = expediente
	}
}

// RecordDecision stamps the authority's decision.
func (cf *CaseFile) RecordDecision(result DecisionResult, now time.Time) {
	t := now
	cf.DecisionAt = &t
	cf.DecisionResult = result
}

// OpenAppeal opens the appeal sub-state on a denial.
func (cf *CaseFile) OpenAppeal() {
	if cf.ResourceStatus == ResourceNone {
		cf.ResourceStatus = ResourcePendente
	}
}

// ApproveDocumentsPartially records the staff override of the document gate.
func (cf *CaseFile) ApproveDocumentsPartially(actorID string, now time.Time) {
	t := now
	cf.PartialDocsApproved = true
	cf.PartialDocsApprovedBy = actorID
	cf.PartialDocsApprovedAt = &t
}

// MarkSuspended freezes the case. Only the suspension controller calls this,
// always together with the linked contract.
func (cf *CaseFile) MarkSuspended(reason string, now time.Time) {
	t := now
	cf.IsSuspended = true
	cf.SuspendedAt = &t
	cf.SuspensionReason = reason
}

// ClearSuspension lifts the freeze without touching the technical status.
func (cf *CaseFile) ClearSuspension() {
	cf.IsSuspended = false
	cf.SuspendedAt = nil
	cf.SuspensionReason = ""
}
