package repository

import (
	"context"
	"errors"

	"github.com/parqhive/pricing-service/models"
	"gorm.io/gorm"
)

// PricingConfigRepositoryImpl implements PricingConfigRepository
type PricingConfigRepositoryImpl struct {
	*BaseRepository[models.PricingConfig, models.PricingConfigFilter]
}

// NewPricingConfigRepository creates a new repository for pricing configs
func NewPricingConfigRepository(db *gorm.DB) PricingConfigRepository {
	return &PricingConfigRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PricingConfig, models.PricingConfigFilter](db),
	}
}

// ByNodeID returns the config owned by a node with all rate rules loaded,
// or nil when the node owns none.
func (r *PricingConfigRepositoryImpl) ByNodeID(ctx context.Context, nodeID uint) (*models.PricingConfig, error) {
	db := r.getDB(ctx)
	var config models.PricingConfig
	err := db.
		Preload("VehicleTypeRates").
		Preload("TimeBasedRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Preload("HolidayRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("node_id = ?", nodeID).
		Last(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// ReplaceForNode swaps a node's owned config wholesale: the previous config
// and its rate rules are removed and the new one inserted in one transaction,
// so readers never observe a half-written rule set.
func (r *PricingConfigRepositoryImpl) ReplaceForNode(ctx context.Context, nodeID uint, config *models.PricingConfig) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if err = r.deleteForNodeTx(db, nodeID); err != nil {
		return err
	}

	config.NodeID = nodeID
	if err = db.Create(config).Error; err != nil {
		return err
	}
	return nil
}

// DeleteForNode removes a node's owned config if present. Returns whether a
// config existed.
func (r *PricingConfigRepositoryImpl) DeleteForNode(ctx context.Context, nodeID uint) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	var existing models.PricingConfig
	err = db.Where("node_id = ?", nodeID).Last(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = nil
			return false, nil
		}
		return false, err
	}

	if err = r.deleteForNodeTx(db, nodeID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *PricingConfigRepositoryImpl) deleteForNodeTx(db *gorm.DB, nodeID uint) error {
	var configs []models.PricingConfig
	if err := db.Where("node_id = ?", nodeID).Find(&configs).Error; err != nil {
		return err
	}
	for _, c := range configs {
		if err := db.Where("pricing_config_id = ?", c.ID).Delete(&models.VehicleTypeRate{}).Error; err != nil {
			return err
		}
		if err := db.Where("pricing_config_id = ?", c.ID).Delete(&models.TimeBasedRate{}).Error; err != nil {
			return err
		}
		if err := db.Where("pricing_config_id = ?", c.ID).Delete(&models.HolidayRate{}).Error; err != nil {
			return err
		}
		if err := db.Delete(&models.PricingConfig{}, c.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PricingConfigRepositoryImpl) applyFilter(db *gorm.DB, filter models.PricingConfigFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.NodeID != nil {
		db = db.Where("node_id = ?", *filter.NodeID)
	}
	return db
}

// ByFilter retrieves pricing configs based on filter criteria
func (r *PricingConfigRepositoryImpl) ByFilter(ctx context.Context, filter models.PricingConfigFilter, orderBy string, limit, offset int) ([]*models.PricingConfig, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricingConfig{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PricingConfig
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of pricing configs matching the filter
func (r *PricingConfigRepositoryImpl) Count(ctx context.Context, filter models.PricingConfigFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricingConfig{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any pricing config matching the filter exists
func (r *PricingConfigRepositoryImpl) Exists(ctx context.Context, filter models.PricingConfigFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
