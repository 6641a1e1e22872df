package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/config"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/repository"
	"github.com/parqhive/pricing-service/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PricingInheritanceFlow defines read operations over the pricing hierarchy
// plus the copy-to-children gap-filling operation.
type PricingInheritanceFlow interface {
	GetPricingHierarchy(ctx context.Context, locationUUID string) (*dto.GetPricingHierarchyResponse, error)
	Resolve(ctx context.Context, nodeUUID string) (*dto.ResolvePricingResponse, error)
	ResolveEffective(ctx context.Context, nodeUUID string) (*PricingInheritanceResult, error)
	CopyToChildren(ctx context.Context, level, nodeUUID string, recursive bool, metadata *ClientMetadata) (*dto.CopyToChildrenResponse, error)
}

type PricingInheritanceFlowImpl struct {
	nodeRepo   repository.HierarchyNodeRepository
	configRepo repository.PricingConfigRepository
	auditRepo  repository.PricingAuditLogRepository
	db         *gorm.DB
	rc         *redis.Client
	pricingCfg config.PricingSettings
}

func NewPricingInheritanceFlow(
	nodeRepo repository.HierarchyNodeRepository,
	configRepo repository.PricingConfigRepository,
	auditRepo repository.PricingAuditLogRepository,
	db *gorm.DB,
	rc *redis.Client,
	pricingCfg config.PricingSettings,
) PricingInheritanceFlow {
	return &PricingInheritanceFlowImpl{
		nodeRepo:   nodeRepo,
		configRepo: configRepo,
		auditRepo:  auditRepo,
		db:         db,
		rc:         rc,
		pricingCfg: pricingCfg,
	}
}

// HierarchyCacheKey is the cache key for a location's resolved hierarchy snapshot.
func HierarchyCacheKey(locationUUID string) string {
	return "pricing:hierarchy:" + locationUUID
}

// GetPricingHierarchy returns the full tree rooted at a location with every
// node annotated by its effective pricing source. Snapshots are cached per
// location and invalidated by any pricing write under that location.
func (f *PricingInheritanceFlowImpl) GetPricingHierarchy(ctx context.Context, locationUUID string) (*dto.GetPricingHierarchyResponse, error) {
	cacheKey := HierarchyCacheKey(locationUUID)
	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.GetPricingHierarchyResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				cached.Cached = true
				return &cached, nil
			}
		}
	}

	root, err := f.nodeRepo.ByUUID(ctx, locationUUID)
	if err != nil {
		return nil, NewBusinessError("HIERARCHY_LOAD_FAILED", "Failed to load location", err)
	}
	if root == nil || root.Level != models.HierarchyLevelLocation {
		return nil, NewBusinessError("LOCATION_NOT_FOUND", "Location not found", ErrLocationNotFound)
	}

	tree, err := f.nodeRepo.SubtreeWithPricing(ctx, root.ID)
	if err != nil {
		return nil, NewBusinessError("HIERARCHY_LOAD_FAILED", "Failed to load hierarchy subtree", err)
	}

	out := &dto.GetPricingHierarchyResponse{
		Message: "Pricing hierarchy retrieved successfully",
		Root:    *buildHierarchyDTO(tree, false),
	}

	if f.rc != nil {
		if bs, err := json.Marshal(out); err == nil {
			if err := f.rc.Set(ctx, cacheKey, bs, f.pricingCfg.HierarchyCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache hierarchy snapshot for %s: %v", locationUUID, err)
			}
		}
	}

	return out, nil
}

// buildHierarchyDTO walks the subtree top-down, tracking whether any
// ancestor owns a config so each node's source is computed in one pass
// instead of re-resolving per node.
func buildHierarchyDTO(node *models.HierarchyNode, ancestorOwns bool) *dto.HierarchyNodeDTO {
	source := models.PricingSourceDefault
	if node.HasOwnPricing() {
		source = models.PricingSourceOwn
	} else if ancestorOwns {
		source = models.PricingSourceInherited
	}

	out := &dto.HierarchyNodeDTO{
		UUID:          node.UUID.String(),
		Level:         node.Level,
		Name:          node.Name,
		PricingSource: source,
		OwnPricing:    ToPricingConfigDTO(node.PricingConfig),
	}
	childAncestorOwns := ancestorOwns || node.HasOwnPricing()
	for _, child := range node.Children {
		out.Children = append(out.Children, buildHierarchyDTO(child, childAncestorOwns))
	}
	return out
}

// Resolve reports which pricing configuration governs a node and where it
// came from.
func (f *PricingInheritanceFlowImpl) Resolve(ctx context.Context, nodeUUID string) (*dto.ResolvePricingResponse, error) {
	result, err := f.ResolveEffective(ctx, nodeUUID)
	if err != nil {
		return nil, err
	}
	return &dto.ResolvePricingResponse{
		Message: "Pricing resolved successfully",
		Result:  ToInheritanceResultDTO(result),
	}, nil
}

// ResolveEffective walks from the node toward the root and returns the
// nearest owned configuration, the system default when none exists. Pure
// read; never mutates the hierarchy.
func (f *PricingInheritanceFlowImpl) ResolveEffective(ctx context.Context, nodeUUID string) (*PricingInheritanceResult, error) {
	node, err := f.nodeRepo.ByUUIDWithPricing(ctx, nodeUUID)
	if err != nil {
		return nil, NewBusinessError("PRICING_RESOLVE_FAILED", "Failed to load hierarchy node", err)
	}
	if node == nil {
		return nil, NewBusinessError("NODE_NOT_FOUND", "Hierarchy node not found", ErrNodeNotFound)
	}

	if node.HasOwnPricing() {
		return &PricingInheritanceResult{
			Node:             node,
			Source:           models.PricingSourceOwn,
			EffectivePricing: node.PricingConfig,
			OwnPricing:       node.PricingConfig,
		}, nil
	}

	ancestors, err := f.nodeRepo.AncestorChain(ctx, node.ID)
	if err != nil {
		return nil, NewBusinessError("PRICING_RESOLVE_FAILED", "Failed to walk ancestor chain", err)
	}
	for _, ancestor := range ancestors {
		if ancestor.HasOwnPricing() {
			return &PricingInheritanceResult{
				Node:             node,
				Source:           models.PricingSourceInherited,
				EffectivePricing: ancestor.PricingConfig,
				InheritedPricing: ancestor.PricingConfig,
				InheritedFrom:    ancestor,
			}, nil
		}
	}

	return &PricingInheritanceResult{
		Node:             node,
		Source:           models.PricingSourceDefault,
		EffectivePricing: DefaultPricingConfig(f.pricingCfg.DefaultBaseRate, f.pricingCfg.DefaultVATRate),
	}, nil
}

// CopyToChildren clones the node's effective config onto every direct child
// that lacks an owned one; children that already own a config are skipped,
// which also makes repeated calls idempotent. With recursive set, the same
// operation is applied to each child afterwards.
func (f *PricingInheritanceFlowImpl) CopyToChildren(ctx context.Context, level, nodeUUID string, recursive bool, metadata *ClientMetadata) (*dto.CopyToChildrenResponse, error) {
	if !models.IsValidHierarchyLevel(level) {
		return nil, NewBusinessError("INVALID_HIERARCHY_LEVEL", "Invalid hierarchy level", ErrInvalidHierarchyLevel)
	}

	node, err := f.nodeRepo.ByUUIDWithPricing(ctx, nodeUUID)
	if err != nil {
		return nil, NewBusinessError("PRICING_COPY_FAILED", "Failed to load hierarchy node", err)
	}
	if node == nil {
		return nil, NewBusinessError("NODE_NOT_FOUND", "Hierarchy node not found", ErrNodeNotFound)
	}
	if node.Level != level {
		return nil, NewBusinessError("LEVEL_MISMATCH", "Node level does not match requested level", ErrLevelMismatch)
	}

	copied := 0
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		effective, err := f.effectiveConfigTx(txCtx, node)
		if err != nil {
			return err
		}
		copied, err = f.copySubtreeTx(txCtx, node, effective, recursive)
		return err
	})
	if err != nil {
		return nil, NewBusinessError("PRICING_COPY_FAILED", "Failed to copy pricing to children", err)
	}

	invalidateHierarchyCache(ctx, f.nodeRepo, f.rc, node.ID)
	writePricingAudit(ctx, f.auditRepo, models.AuditActionPricingCopied, node, metadata, map[string]any{
		"recursive":    recursive,
		"copied_count": copied,
	})

	return &dto.CopyToChildrenResponse{
		Message:     fmt.Sprintf("Pricing copied to %d children", copied),
		CopiedCount: copied,
	}, nil
}

// copySubtreeTx fills the gap on every direct child, then cascades when
// recursive. The tree is finite and copies only ever fill gaps, so the
// recursion always terminates.
func (f *PricingInheritanceFlowImpl) copySubtreeTx(ctx context.Context, node *models.HierarchyNode, effective *models.PricingConfig, recursive bool) (int, error) {
	children, err := f.nodeRepo.ListChildren(ctx, node.ID)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, child := range children {
		var childEffective *models.PricingConfig
		if child.HasOwnPricing() {
			if recursive {
				// ListChildren loads the config without its rate rules;
				// reload fully before cloning further down.
				childEffective, err = f.configRepo.ByNodeID(ctx, child.ID)
				if err != nil {
					return copied, err
				}
			}
		} else {
			clone := effective.Clone()
			clone.NodeID = child.ID
			if err := f.configRepo.Save(ctx, clone); err != nil {
				return copied, err
			}
			copied++
			childEffective = clone
		}

		if recursive && childEffective != nil {
			n, err := f.copySubtreeTx(ctx, child, childEffective, true)
			copied += n
			if err != nil {
				return copied, err
			}
		}
	}
	return copied, nil
}

func (f *PricingInheritanceFlowImpl) effectiveConfigTx(ctx context.Context, node *models.HierarchyNode) (*models.PricingConfig, error) {
	if node.HasOwnPricing() {
		return node.PricingConfig, nil
	}
	ancestors, err := f.nodeRepo.AncestorChain(ctx, node.ID)
	if err != nil {
		return nil, err
	}
	for _, ancestor := range ancestors {
		if ancestor.HasOwnPricing() {
			return ancestor.PricingConfig, nil
		}
	}
	return DefaultPricingConfig(f.pricingCfg.DefaultBaseRate, f.pricingCfg.DefaultVATRate), nil
}

// invalidateHierarchyCache drops the cached snapshot of the location that
// contains the node. Cache failures are logged, never surfaced; the database
// remains the source of truth.
func invalidateHierarchyCache(ctx context.Context, nodeRepo repository.HierarchyNodeRepository, rc *redis.Client, nodeID uint) {
	if rc == nil {
		return
	}
	root, err := nodeRepo.RootOf(ctx, nodeID)
	if err != nil || root == nil {
		log.Printf("Failed to find root for cache invalidation of node %d: %v", nodeID, err)
		return
	}
	if err := rc.Del(ctx, HierarchyCacheKey(root.UUID.String())).Err(); err != nil {
		log.Printf("Failed to invalidate hierarchy cache for %s: %v", root.UUID, err)
	}
}

func writePricingAudit(ctx context.Context, auditRepo repository.PricingAuditLogRepository, action string, node *models.HierarchyNode, metadata *ClientMetadata, extra map[string]any) {
	entry := &models.PricingAuditLog{
		Action:    action,
		NodeID:    &node.ID,
		Level:     &node.Level,
		Success:   utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
	}
	if operatorID, ok := ctx.Value(utils.OperatorIDKey).(uint); ok {
		entry.OperatorID = &operatorID
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			entry.RequestID = &metadata.RequestID
		}
	}
	if extra != nil {
		if bs, err := json.Marshal(extra); err == nil {
			entry.Metadata = bs
		}
	}
	if err := auditRepo.Save(ctx, entry); err != nil {
		log.Printf("Failed to write pricing audit log (%s): %v", action, err)
	}
}
