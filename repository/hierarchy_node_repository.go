package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/utils"
	"gorm.io/gorm"
)

// HierarchyNodeRepositoryImpl implements HierarchyNodeRepository
type HierarchyNodeRepositoryImpl struct {
	*BaseRepository[models.HierarchyNode, models.HierarchyNodeFilter]
}

// NewHierarchyNodeRepository creates a new repository for hierarchy nodes
func NewHierarchyNodeRepository(db *gorm.DB) HierarchyNodeRepository {
	return &HierarchyNodeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.HierarchyNode, models.HierarchyNodeFilter](db),
	}
}

func (r *HierarchyNodeRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.HierarchyNode, error) {
	db := r.getDB(ctx)
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	var node models.HierarchyNode
	if err := db.Where("uuid = ?", parsed).Last(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

// ByUUIDWithPricing loads a node together with its owned pricing config and
// the config's rate rules.
func (r *HierarchyNodeRepositoryImpl) ByUUIDWithPricing(ctx context.Context, uuid string) (*models.HierarchyNode, error) {
	db := r.getDB(ctx)
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	var node models.HierarchyNode
	err = db.
		Preload("PricingConfig").
		Preload("PricingConfig.VehicleTypeRates").
		Preload("PricingConfig.TimeBasedRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Preload("PricingConfig.HolidayRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("uuid = ?", parsed).
		Last(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *HierarchyNodeRepositoryImpl) ListChildren(ctx context.Context, parentID uint) ([]*models.HierarchyNode, error) {
	db := r.getDB(ctx)
	var nodes []*models.HierarchyNode
	err := db.
		Preload("PricingConfig").
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&nodes).Error
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// AncestorChain returns the node's ancestors ordered nearest-first, ending at
// the location root. The chain excludes the node itself. Each ancestor is
// loaded with its owned pricing config so inheritance resolution needs no
// further queries.
func (r *HierarchyNodeRepositoryImpl) AncestorChain(ctx context.Context, nodeID uint) ([]*models.HierarchyNode, error) {
	db := r.getDB(ctx)

	var chain []*models.HierarchyNode
	currentID := nodeID
	// The tree is at most four levels deep; the walk is bounded regardless.
	for range [8]struct{}{} {
		var node models.HierarchyNode
		if err := db.Last(&node, currentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("hierarchy node %d not found while walking ancestors", currentID)
			}
			return nil, err
		}
		if node.ParentID == nil {
			break
		}
		parent, err := r.withPricingByID(ctx, *node.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("hierarchy node %d references missing parent %d", node.ID, *node.ParentID)
		}
		chain = append(chain, parent)
		currentID = parent.ID
	}
	return chain, nil
}

// SubtreeWithPricing loads the full subtree rooted at rootID with every
// node's owned pricing config populated. Children are attached in id order.
func (r *HierarchyNodeRepositoryImpl) SubtreeWithPricing(ctx context.Context, rootID uint) (*models.HierarchyNode, error) {
	root, err := r.withPricingByID(ctx, rootID)
	if err != nil || root == nil {
		return root, err
	}
	if err := r.loadChildrenRecursive(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

// RootOf walks parent references up to the owning location node.
func (r *HierarchyNodeRepositoryImpl) RootOf(ctx context.Context, nodeID uint) (*models.HierarchyNode, error) {
	node, err := r.ByID(ctx, nodeID)
	if err != nil || node == nil {
		return node, err
	}
	for node.ParentID != nil {
		parent, err := r.ByID(ctx, *node.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("hierarchy node %d references missing parent %d", node.ID, *node.ParentID)
		}
		node = parent
	}
	return node, nil
}

func (r *HierarchyNodeRepositoryImpl) withPricingByID(ctx context.Context, id uint) (*models.HierarchyNode, error) {
	db := r.getDB(ctx)
	var node models.HierarchyNode
	err := db.
		Preload("PricingConfig").
		Preload("PricingConfig.VehicleTypeRates").
		Preload("PricingConfig.TimeBasedRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Preload("PricingConfig.HolidayRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Last(&node, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *HierarchyNodeRepositoryImpl) loadChildrenRecursive(ctx context.Context, node *models.HierarchyNode) error {
	db := r.getDB(ctx)
	var children []*models.HierarchyNode
	err := db.
		Preload("PricingConfig").
		Preload("PricingConfig.VehicleTypeRates").
		Preload("PricingConfig.TimeBasedRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Preload("PricingConfig.HolidayRates", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("parent_id = ?", node.ID).
		Order("id ASC").
		Find(&children).Error
	if err != nil {
		return err
	}
	node.Children = children
	for _, child := range children {
		if err := r.loadChildrenRecursive(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *HierarchyNodeRepositoryImpl) applyFilter(db *gorm.DB, filter models.HierarchyNodeFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Level != nil {
		db = db.Where("level = ?", *filter.Level)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.ParentID != nil {
		db = db.Where("parent_id = ?", *filter.ParentID)
	}
	return db
}

// ByFilter retrieves hierarchy nodes based on filter criteria
func (r *HierarchyNodeRepositoryImpl) ByFilter(ctx context.Context, filter models.HierarchyNodeFilter, orderBy string, limit, offset int) ([]*models.HierarchyNode, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.HierarchyNode{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.HierarchyNode
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of hierarchy nodes matching the filter
func (r *HierarchyNodeRepositoryImpl) Count(ctx context.Context, filter models.HierarchyNodeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.HierarchyNode{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any hierarchy node matching the filter exists
func (r *HierarchyNodeRepositoryImpl) Exists(ctx context.Context, filter models.HierarchyNodeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
