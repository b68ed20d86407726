package domain

import (
	"time"

	"gorm.io/gorm"
)

// RequirementStatus is the lifecycle of an authority exigency.
type RequirementStatus string

const (
	RequirementAberta     RequirementStatus = "ABERTA"
	RequirementRespondida RequirementStatus = "RESPONDIDA"
	RequirementEncerrada  RequirementStatus = "ENCERRADA"
)

// Requirement is an authority-issued request for additional evidence on a
// filed case. The official deadline is the authority's; the internal one is
// earlier and gives staff a buffer.
type Requirement struct {
	gorm.Model
	RequirementID string            `gorm:"column:requirement_id;type:varchar(36);uniqueIndex;not null" json:"requirement_id"`
	CaseID        string            `gorm:"column:case_id;type:varchar(36);index;not null" json:"case_id"`
	Description   string            `gorm:"column:description;type:text;not null" json:"description"`
	Status        RequirementStatus `gorm:"column:status;type:varchar(16);index;not null;default:'ABERTA'" json:"status"`

	OfficialDeadline time.Time `gorm:"column:official_deadline;not null" json:"official_deadline"`
	InternalDeadline time.Time `gorm:"column:internal_deadline;not null" json:"internal_deadline"`
	ExtensionCount   int       `gorm:"column:extension_count;default:0" json:"extension_count"`

	RespondedAt *time.Time `gorm:"column:responded_at" json:"responded_at"`
	RespondedBy string     `gorm:"column:responded_by;type:varchar(36)" json:"responded_by"`
	ClosedAt    *time.Time `gorm:"column:closed_at" json:"closed_at"`
}

// TableName maps the entity to its table.
func (Requirement) TableName() string { return "case_requirements" }

// NewRequirement opens an exigency. The official deadline must still be in
// the future; the internal deadline is derived by subtracting the buffer.
func NewRequirement(requirementID, caseID, description string, officialDeadline time.Time, buffer time.Duration, now time.Time) (*Requirement, error) {
	if !officialDeadline.After(now) {
		return nil, ErrInvalidDeadline
	}
	return &Requirement{
		RequirementID:    requirementID,
		CaseID:           caseID,
		Description:      description,
		Status:           RequirementAberta,
		OfficialDeadline: officialDeadline,
		InternalDeadline: officialDeadline.Add(-buffer),
	}, nil
}

// Extend applies an authority-granted extension. Extensions only lengthen:
// the new deadline must not precede the current official one. The internal
// deadline shifts with the same buffer.
func (r *Requirement) Extend(newDeadline time.Time, buffer time.Duration) error {
	if r.Status != RequirementAberta {
		return ErrRequirementNotOpen
	}
	if newDeadline.Before(r.OfficialDeadline) {
		return ErrInvalidDeadline
	}
	r.OfficialDeadline = newDeadline
	r.InternalDeadline = newDeadline.Add(-buffer)
	r.ExtensionCount++
	return nil
}

// MarkResponded records the legal hand-off of the prepared answer.
func (r *Requirement) MarkResponded(actorID string, now time.Time) error {
	if r.Status != RequirementAberta {
		return ErrRequirementNotOpen
	}
	t := now
	r.Status = RequirementRespondida
	r.RespondedAt = &t
	r.RespondedBy = actorID
	return nil
}

// Close ends the exigency once the authority confirms resolution, or when it
// withdraws the demand while still open.
func (r *Requirement) Close(now time.Time) error {
	if r.Status == RequirementEncerrada {
		return ErrRequirementClosed
	}
	t := now
	r.Status = RequirementEncerrada
	r.ClosedAt = &t
	return nil
}
