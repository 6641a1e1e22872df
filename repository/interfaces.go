// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/parqhive/pricing-service/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// HierarchyNodeRepository defines operations for parking hierarchy nodes
type HierarchyNodeRepository interface {
	Repository[models.HierarchyNode, models.HierarchyNodeFilter]
	ByUUID(ctx context.Context, uuid string) (*models.HierarchyNode, error)
	ByUUIDWithPricing(ctx context.Context, uuid string) (*models.HierarchyNode, error)
	ListChildren(ctx context.Context, parentID uint) ([]*models.HierarchyNode, error)
	AncestorChain(ctx context.Context, nodeID uint) ([]*models.HierarchyNode, error)
	SubtreeWithPricing(ctx context.Context, rootID uint) (*models.HierarchyNode, error)
	RootOf(ctx context.Context, nodeID uint) (*models.HierarchyNode, error)
}

// PricingConfigRepository defines operations for owned pricing configurations
type PricingConfigRepository interface {
	Repository[models.PricingConfig, models.PricingConfigFilter]
	ByNodeID(ctx context.Context, nodeID uint) (*models.PricingConfig, error)
	ReplaceForNode(ctx context.Context, nodeID uint, config *models.PricingConfig) error
	DeleteForNode(ctx context.Context, nodeID uint) (bool, error)
}

// DiscountConfigurationRepository defines operations for operator discounts
type DiscountConfigurationRepository interface {
	Repository[models.DiscountConfiguration, models.DiscountConfigurationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.DiscountConfiguration, error)
	ByUUIDs(ctx context.Context, uuids []string) ([]*models.DiscountConfiguration, error)
	ListByOperator(ctx context.Context, operatorID uint) ([]*models.DiscountConfiguration, error)
	Update(ctx context.Context, discount *models.DiscountConfiguration) error
	Delete(ctx context.Context, id uint) error
	IncrementUsage(ctx context.Context, id uint) error
}

// PricingAuditLogRepository defines operations for pricing audit logs
type PricingAuditLogRepository interface {
	Repository[models.PricingAuditLog, models.PricingAuditLogFilter]
	ListByNode(ctx context.Context, nodeID uint, limit, offset int) ([]*models.PricingAuditLog, error)
	ListByOperator(ctx context.Context, operatorID uint, limit, offset int) ([]*models.PricingAuditLog, error)
}
