package repository

import (
	"context"
	"errors"

	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/utils"
	"gorm.io/gorm"
)

// DiscountConfigurationRepositoryImpl implements DiscountConfigurationRepository
type DiscountConfigurationRepositoryImpl struct {
	*BaseRepository[models.DiscountConfiguration, models.DiscountConfigurationFilter]
}

// NewDiscountConfigurationRepository creates a new repository for discount configurations
func NewDiscountConfigurationRepository(db *gorm.DB) DiscountConfigurationRepository {
	return &DiscountConfigurationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DiscountConfiguration, models.DiscountConfigurationFilter](db),
	}
}

func (r *DiscountConfigurationRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.DiscountConfiguration, error) {
	db := r.getDB(ctx)
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	var d models.DiscountConfiguration
	if err := db.Where("uuid = ?", parsed).Last(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// ByUUIDs returns the discounts matching the given UUID strings. Unknown
// UUIDs are simply absent from the result; callers detect them by length.
func (r *DiscountConfigurationRepositoryImpl) ByUUIDs(ctx context.Context, uuids []string) ([]*models.DiscountConfiguration, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	parsed := make([]any, 0, len(uuids))
	for _, u := range uuids {
		p, err := utils.ParseUUID(u)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}

	db := r.getDB(ctx)
	var rows []*models.DiscountConfiguration
	if err := db.Where("uuid IN ?", parsed).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DiscountConfigurationRepositoryImpl) ListByOperator(ctx context.Context, operatorID uint) ([]*models.DiscountConfiguration, error) {
	filter := models.DiscountConfigurationFilter{OperatorID: &operatorID}
	return r.ByFilter(ctx, filter, "created_at DESC", 0, 0)
}

// Update persists changes to an existing discount configuration
func (r *DiscountConfigurationRepositoryImpl) Update(ctx context.Context, discount *models.DiscountConfiguration) error {
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

	err = db.Save(discount).Error
	return err
}

// Delete removes a discount configuration by ID
func (r *DiscountConfigurationRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.DiscountConfiguration{}, id).Error
	return err
}

// IncrementUsage bumps the usage counter after a discount participates in a
// priced transaction
func (r *DiscountConfigurationRepositoryImpl) IncrementUsage(ctx context.Context, id uint) error {
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

	err = db.Model(&models.DiscountConfiguration{}).
		Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
	return err
}

// applyFilter applies filter conditions to the GORM query
func (r *DiscountConfigurationRepositoryImpl) applyFilter(db *gorm.DB, filter models.DiscountConfigurationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.OperatorID != nil {
		db = db.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.Type != nil {
		db = db.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves discount configurations based on filter criteria
func (r *DiscountConfigurationRepositoryImpl) ByFilter(ctx context.Context, filter models.DiscountConfigurationFilter, orderBy string, limit, offset int) ([]*models.DiscountConfiguration, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DiscountConfiguration{}), filter)

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

	var rows []*models.DiscountConfiguration
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of discount configurations matching the filter
func (r *DiscountConfigurationRepositoryImpl) Count(ctx context.Context, filter models.DiscountConfigurationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DiscountConfiguration{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any discount configuration matching the filter exists
func (r *DiscountConfigurationRepositoryImpl) Exists(ctx context.Context, filter models.DiscountConfigurationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
