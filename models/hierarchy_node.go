// Package models contains domain entities and business models for the pricing service
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hierarchy level constants. Levels form a strict order from location down
// to spot; a node's parent is always exactly one level above it.
const (
	HierarchyLevelLocation = "location"
	HierarchyLevelSection  = "section"
	HierarchyLevelZone     = "zone"
	HierarchyLevelSpot     = "spot"
)

var hierarchyLevelRank = map[string]int{
	HierarchyLevelLocation: 0,
	HierarchyLevelSection:  1,
	HierarchyLevelZone:     2,
	HierarchyLevelSpot:     3,
}

// IsValidHierarchyLevel reports whether level is one of the four known levels.
func IsValidHierarchyLevel(level string) bool {
	_, ok := hierarchyLevelRank[level]
	return ok
}

// HierarchyLevelRank returns the depth of a level (location=0 .. spot=3),
// or -1 for an unknown level.
func HierarchyLevelRank(level string) int {
	if r, ok := hierarchyLevelRank[level]; ok {
		return r
	}
	return -1
}

// ParentHierarchyLevel returns the level directly above the given one, or
// an empty string for location (the root) and unknown levels.
func ParentHierarchyLevel(level string) string {
	switch level {
	case HierarchyLevelSection:
		return HierarchyLevelLocation
	case HierarchyLevelZone:
		return HierarchyLevelSection
	case HierarchyLevelSpot:
		return HierarchyLevelZone
	default:
		return ""
	}
}

// HierarchyNode is one node of the Location > Section > Zone > Spot tree.
// Only location-level nodes have a nil ParentID.
type HierarchyNode struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_hierarchy_nodes_uuid" json:"uuid"`
	Level    string    `gorm:"size:20;not null;index:idx_hierarchy_nodes_level" json:"level"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	ParentID *uint     `gorm:"index:idx_hierarchy_nodes_parent_id" json:"parent_id,omitempty"`

	Children      []*HierarchyNode `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	PricingConfig *PricingConfig   `gorm:"foreignKey:NodeID" json:"pricing_config,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (HierarchyNode) TableName() string {
	return "hierarchy_nodes"
}

// BeforeCreate ensures UUID is set for HierarchyNode
func (n *HierarchyNode) BeforeCreate(tx *gorm.DB) error {
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	return nil
}

// IsRoot reports whether the node is a location-level root.
func (n *HierarchyNode) IsRoot() bool {
	return n.Level == HierarchyLevelLocation
}

// HasOwnPricing reports whether the node owns a pricing configuration.
func (n *HierarchyNode) HasOwnPricing() bool {
	return n.PricingConfig != nil
}

// HierarchyNodeFilter represents filter criteria for hierarchy node queries
type HierarchyNodeFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Level    *string    `json:"level,omitempty"`
	Name     *string    `json:"name,omitempty"`
	ParentID *uint      `json:"parent_id,omitempty"`
}
