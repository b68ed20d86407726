package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DocumentStatus is the review state of one supporting document.
type DocumentStatus string

const (
	DocumentNaoEnviado    DocumentStatus = "NAO_ENVIADO"
	DocumentEnviado       DocumentStatus = "ENVIADO"
	DocumentEmConferencia DocumentStatus = "EM_CONFERENCIA"
	DocumentAprovado      DocumentStatus = "APROVADO"
	DocumentRejeitado     DocumentStatus = "REJEITADO"
)

// Document is one checklist entry of a case. Instances are released when the
// case enters document collection; APROVADO is terminal.
type Document struct {
	gorm.Model
	DocumentID string `gorm:"column:document_id;type:varchar(36);uniqueIndex;not null" json:"document_id"`
	CaseID     string `gorm:"column:case_id;type:varchar(36);index;not null" json:"case_id"`
	// TypeCode identifies the document type in the per-service-type checklist
	// configuration.
	TypeCode string         `gorm:"column:type_code;type:varchar(64);not null" json:"type_code"`
	Status   DocumentStatus `gorm:"column:status;type:varchar(20);index;not null;default:'NAO_ENVIADO'" json:"status"`
	Required bool           `gorm:"column:required;default:true" json:"required"`
	// FileURL is an opaque reference to externally stored content.
	FileURL         string `gorm:"column:file_url;type:varchar(512)" json:"file_url"`
	RejectionReason string `gorm:"column:rejection_reason;type:varchar(512)" json:"rejection_reason"`
	// IsPostProtocolPending defers a document past submission without
	// blocking the case, for papers only obtainable after filing.
	IsPostProtocolPending bool       `gorm:"column:is_post_protocol_pending;default:false" json:"is_post_protocol_pending"`
	SubmittedAt           *time.Time `gorm:"column:submitted_at" json:"submitted_at"`
	ReviewedAt            *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`
	ReviewedBy            string     `gorm:"column:reviewed_by;type:varchar(36)" json:"reviewed_by"`
}

// TableName maps the entity to its table.
func (Document) TableName() string { return "case_documents" }

// NewDocument releases one checklist entry for a case.
func NewDocument(documentID, caseID, typeCode string, required bool) *Document {
	return &Document{
		DocumentID: documentID,
		CaseID:     caseID,
		TypeCode:   typeCode,
		Status:     DocumentNaoEnviado,
		Required:   required,
	}
}

// Submit records a client upload. Valid from NAO_ENVIADO and from REJEITADO,
// which is how a rejected document cycles back to ENVIADO.
func (d *Document) Submit(fileURL string, now time.Time) error {
	switch d.Status {
	case DocumentNaoEnviado, DocumentRejeitado:
	default:
		return ErrDocumentAlreadyApproved
	}
	t := now
	d.Status = DocumentEnviado
	d.FileURL = fileURL
	d.RejectionReason = ""
	d.SubmittedAt = &t
	return nil
}

// StartReview picks the document up for conference.
func (d *Document) StartReview() error {
	if d.Status != DocumentEnviado {
		return ErrDocumentNotSubmitted
	}
	d.Status = DocumentEmConferencia
	return nil
}

// Approve finishes review favourably; irreversible.
func (d *Document) Approve(actorID string, now time.Time) error {
	if d.Status != DocumentEmConferencia {
		return ErrDocumentNotUnderReview
	}
	t := now
	d.Status = DocumentAprovado
	d.IsPostProtocolPending = false
	d.ReviewedAt = &t
	d.ReviewedBy = actorID
	return nil
}

// Reject sends the document back with a mandatory reason; the client may
// resubmit.
func (d *Document) Reject(reason, actorID string, now time.Time) error {
	if d.Status != DocumentEmConferencia {
		return ErrDocumentNotUnderReview
	}
	if strings.TrimSpace(reason) == "" {
		return ErrRejectReasonRequired
	}
	t := now
	d.Status = DocumentRejeitado
	d.RejectionReason = reason
	d.ReviewedAt = &t
	d.ReviewedBy = actorID
	return nil
}

// SetPostProtocolPending defers or un-defers the document. The caller checks
// that the parent case is already filed; the entity only refuses approved
// documents, which have nothing left to defer.
func (d *Document) SetPostProtocolPending(pending bool) error {
	if d.Status == DocumentAprovado {
		return ErrDocumentAlreadyApproved
	}
	d.IsPostProtocolPending = pending
	return nil
}

// SatisfiesGate reports whether this document no longer blocks submission:
// approved, deferred post-protocol, or simply not required.
func (d *Document) SatisfiesGate() bool {
	return !d.Required || d.Status == DocumentAprovado || d.IsPostProtocolPending
}
