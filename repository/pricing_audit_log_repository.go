package repository

import (
	"context"

	"github.com/parqhive/pricing-service/models"
	"gorm.io/gorm"
)

// PricingAuditLogRepositoryImpl implements PricingAuditLogRepository
type PricingAuditLogRepositoryImpl struct {
	*BaseRepository[models.PricingAuditLog, models.PricingAuditLogFilter]
}

// NewPricingAuditLogRepository creates a new repository for pricing audit logs
func NewPricingAuditLogRepository(db *gorm.DB) PricingAuditLogRepository {
	return &PricingAuditLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PricingAuditLog, models.PricingAuditLogFilter](db),
	}
}

func (r *PricingAuditLogRepositoryImpl) ListByNode(ctx context.Context, nodeID uint, limit, offset int) ([]*models.PricingAuditLog, error) {
	filter := models.PricingAuditLogFilter{NodeID: &nodeID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

func (r *PricingAuditLogRepositoryImpl) ListByOperator(ctx context.Context, operatorID uint, limit, offset int) ([]*models.PricingAuditLog, error) {
	filter := models.PricingAuditLogFilter{OperatorID: &operatorID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// applyFilter applies filter conditions to the GORM query
func (r *PricingAuditLogRepositoryImpl) applyFilter(db *gorm.DB, filter models.PricingAuditLogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.OperatorID != nil {
		db = db.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.Action != nil {
		db = db.Where("action = ?", *filter.Action)
	}
	if filter.NodeID != nil {
		db = db.Where("node_id = ?", *filter.NodeID)
	}
	if filter.Success != nil {
		db = db.Where("success = ?", *filter.Success)
	}
	if filter.RequestID != nil {
		db = db.Where("request_id = ?", *filter.RequestID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves audit logs based on filter criteria
func (r *PricingAuditLogRepositoryImpl) ByFilter(ctx context.Context, filter models.PricingAuditLogFilter, orderBy string, limit, offset int) ([]*models.PricingAuditLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricingAuditLog{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PricingAuditLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of audit logs matching the filter
func (r *PricingAuditLogRepositoryImpl) Count(ctx context.Context, filter models.PricingAuditLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricingAuditLog{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any audit log matching the filter exists
func (r *PricingAuditLogRepositoryImpl) Exists(ctx context.Context, filter models.PricingAuditLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
