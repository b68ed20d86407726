// Package domain models SLA alerts: what breached, how badly, and who should
// hear about it. The monitor only recommends; acting on a recommendation is
// the suspension controller's or staff's call.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// AlertKind names the SLA that was breached.
type AlertKind string

const (
	AlertFirstContact        AlertKind = "FIRST_CONTACT"
	AlertPaymentOverdue      AlertKind = "PAYMENT_OVERDUE"
	AlertContractSignature   AlertKind = "CONTRACT_SIGNATURE"
	AlertRequirementResponse AlertKind = "REQUIREMENT_RESPONSE"
	AlertRequirementDeadline AlertKind = "REQUIREMENT_DEADLINE"
)

// EntityType identifies what the alert is about.
type EntityType string

const (
	EntityCase        EntityType = "CASE"
	EntityPayment     EntityType = "PAYMENT"
	EntityContract    EntityType = "CONTRACT"
	EntityRequirement EntityType = "REQUIREMENT"
)

// Audience is the escalation target of a tier.
type Audience string

const (
	AudienceClient        Audience = "CLIENT"
	AudienceStaff         Audience = "STAFF"
	AudienceClientStaff   Audience = "CLIENT_STAFF"
	AudienceClientManager Audience = "CLIENT_MANAGER"
)

// Alert is one raised SLA breach. The unique index on entity/kind/tier makes
// the periodic sweep idempotent: re-evaluating the same breach in a later
// cycle does not raise it twice.
type Alert struct {
	gorm.Model
	AlertID    string     `gorm:"column:alert_id;type:varchar(36);uniqueIndex;not null" json:"alert_id"`
	EntityType EntityType `gorm:"column:entity_type;type:varchar(16);uniqueIndex:idx_alert_breach;not null" json:"entity_type"`
	EntityID   string     `gorm:"column:entity_id;type:varchar(36);uniqueIndex:idx_alert_breach;not null" json:"entity_id"`
	Kind       AlertKind  `gorm:"column:kind;type:varchar(32);uniqueIndex:idx_alert_breach;not null" json:"kind"`
	Tier       int        `gorm:"column:tier;uniqueIndex:idx_alert_breach;not null" json:"tier"`

	// CaseID links the alert back to casework for listing, when known.
	CaseID   string   `gorm:"column:case_id;type:varchar(36);index" json:"case_id"`
	Audience Audience `gorm:"column:audience;type:varchar(16);not null" json:"audience"`
	Message  string   `gorm:"column:message;type:varchar(255)" json:"message"`

	// Recommendations for the acting authorities; never executed here.
	RecommendSuspension   bool `gorm:"column:recommend_suspension;default:false" json:"recommend_suspension"`
	RecommendCancellation bool `gorm:"column:recommend_cancellation;default:false" json:"recommend_cancellation"`

	RaisedAt time.Time `gorm:"column:raised_at;not null" json:"raised_at"`
}

// TableName maps the entity to its table.
func (Alert) TableName() string { return "sla_alerts" }
