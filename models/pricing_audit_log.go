package models

import (
	"encoding/json"
	"time"
)

// PricingAuditLog records every mutating pricing operation for traceability:
// which operator changed which node's configuration, and whether it stuck.
type PricingAuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OperatorID   *uint           `gorm:"index:idx_pricing_audit_operator_id" json:"operator_id,omitempty"`
	Action       string          `gorm:"size:50;not null;index:idx_pricing_audit_action" json:"action"`
	NodeID       *uint           `gorm:"index:idx_pricing_audit_node_id" json:"node_id,omitempty"`
	Level        *string         `gorm:"size:20" json:"level,omitempty"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_pricing_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_pricing_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_pricing_audit_created_at" json:"created_at"`
}

func (PricingAuditLog) TableName() string {
	return "pricing_audit_log"
}

// Pricing audit action constants
const (
	AuditActionPricingCreated  = "pricing_created"
	AuditActionPricingUpdated  = "pricing_updated"
	AuditActionPricingRemoved  = "pricing_removed"
	AuditActionPricingCopied   = "pricing_copied_to_children"
	AuditActionDiscountCreated = "discount_created"
	AuditActionDiscountUpdated = "discount_updated"
	AuditActionDiscountDeleted = "discount_deleted"
	AuditActionHierarchySeeded = "hierarchy_seeded"
)

func (a *PricingAuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

// PricingAuditLogFilter represents filter criteria for audit log queries
type PricingAuditLogFilter struct {
	ID            *uint      `json:"id,omitempty"`
	OperatorID    *uint      `json:"operator_id,omitempty"`
	Action        *string    `json:"action,omitempty"`
	NodeID        *uint      `json:"node_id,omitempty"`
	Success       *bool      `json:"success,omitempty"`
	RequestID     *string    `json:"request_id,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
