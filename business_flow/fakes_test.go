package businessflow

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/parqhive/pricing-service/models"
)

// fakeStore is the shared in-memory backing for the fake repositories in this
// package. Pricing configs are keyed by node ID, matching the one-config-per-
// node constraint.
type fakeStore struct {
	nodes     map[uint]*models.HierarchyNode
	configs   map[uint]*models.PricingConfig
	discounts map[uint]*models.DiscountConfiguration
	audits    []*models.PricingAuditLog
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes:     make(map[uint]*models.HierarchyNode),
		configs:   make(map[uint]*models.PricingConfig),
		discounts: make(map[uint]*models.DiscountConfiguration),
		nextID:    1000,
	}
}

func (s *fakeStore) nextSequence() uint {
	s.nextID++
	return s.nextID
}

// addNode registers a hierarchy node and returns it. parentID of 0 means root.
func (s *fakeStore) addNode(id uint, level, name string, parentID uint) *models.HierarchyNode {
	node := &models.HierarchyNode{
		ID:    id,
		UUID:  uuid.New(),
		Level: level,
		Name:  name,
	}
	if parentID != 0 {
		pid := parentID
		node.ParentID = &pid
	}
	s.nodes[id] = node
	return node
}

// setConfig gives a node an owned pricing configuration.
func (s *fakeStore) setConfig(nodeID uint, config *models.PricingConfig) *models.PricingConfig {
	config.ID = s.nextSequence()
	config.UUID = uuid.New()
	config.NodeID = nodeID
	s.configs[nodeID] = config
	return config
}

// addDiscount registers a discount configuration.
func (s *fakeStore) addDiscount(d *models.DiscountConfiguration) *models.DiscountConfiguration {
	if d.ID == 0 {
		d.ID = s.nextSequence()
	}
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	s.discounts[d.ID] = d
	return d
}

// nodeCopy returns a detached copy of a node, optionally with its owned
// pricing config attached.
func (s *fakeStore) nodeCopy(id uint, withPricing bool) *models.HierarchyNode {
	node, ok := s.nodes[id]
	if !ok {
		return nil
	}
	c := *node
	c.Children = nil
	c.PricingConfig = nil
	if withPricing {
		c.PricingConfig = s.configs[id]
	}
	return &c
}

func (s *fakeStore) childIDs(parentID uint) []uint {
	var ids []uint
	for id, node := range s.nodes {
		if node.ParentID != nil && *node.ParentID == parentID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeHierarchyNodeRepo struct {
	store *fakeStore
}

func (r *fakeHierarchyNodeRepo) ByID(ctx context.Context, id uint) (*models.HierarchyNode, error) {
	return r.store.nodeCopy(id, false), nil
}

func (r *fakeHierarchyNodeRepo) ByFilter(ctx context.Context, filter models.HierarchyNodeFilter, orderBy string, limit, offset int) ([]*models.HierarchyNode, error) {
	var out []*models.HierarchyNode
	for _, node := range r.store.nodes {
		if filter.Level != nil && node.Level != *filter.Level {
			continue
		}
		if filter.Name != nil && node.Name != *filter.Name {
			continue
		}
		if filter.ParentID != nil && (node.ParentID == nil || *node.ParentID != *filter.ParentID) {
			continue
		}
		out = append(out, r.store.nodeCopy(node.ID, false))
	}
	return out, nil
}

func (r *fakeHierarchyNodeRepo) Save(ctx context.Context, node *models.HierarchyNode) error {
	if node.ID == 0 {
		node.ID = r.store.nextSequence()
	}
	if node.UUID == uuid.Nil {
		node.UUID = uuid.New()
	}
	r.store.nodes[node.ID] = node
	return nil
}

func (r *fakeHierarchyNodeRepo) SaveBatch(ctx context.Context, nodes []*models.HierarchyNode) error {
	for _, node := range nodes {
		if err := r.Save(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeHierarchyNodeRepo) Count(ctx context.Context, filter models.HierarchyNodeFilter) (int64, error) {
	matched, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *fakeHierarchyNodeRepo) Exists(ctx context.Context, filter models.HierarchyNodeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakeHierarchyNodeRepo) ByUUID(ctx context.Context, nodeUUID string) (*models.HierarchyNode, error) {
	for id, node := range r.store.nodes {
		if node.UUID.String() == nodeUUID {
			return r.store.nodeCopy(id, false), nil
		}
	}
	return nil, nil
}

func (r *fakeHierarchyNodeRepo) ByUUIDWithPricing(ctx context.Context, nodeUUID string) (*models.HierarchyNode, error) {
	for id, node := range r.store.nodes {
		if node.UUID.String() == nodeUUID {
			return r.store.nodeCopy(id, true), nil
		}
	}
	return nil, nil
}

func (r *fakeHierarchyNodeRepo) ListChildren(ctx context.Context, parentID uint) ([]*models.HierarchyNode, error) {
	var out []*models.HierarchyNode
	for _, id := range r.store.childIDs(parentID) {
		out = append(out, r.store.nodeCopy(id, true))
	}
	return out, nil
}

func (r *fakeHierarchyNodeRepo) AncestorChain(ctx context.Context, nodeID uint) ([]*models.HierarchyNode, error) {
	var out []*models.HierarchyNode
	node, ok := r.store.nodes[nodeID]
	if !ok {
		return nil, nil
	}
	for node.ParentID != nil {
		parent, ok := r.store.nodes[*node.ParentID]
		if !ok {
			break
		}
		out = append(out, r.store.nodeCopy(parent.ID, true))
		node = parent
	}
	return out, nil
}

func (r *fakeHierarchyNodeRepo) SubtreeWithPricing(ctx context.Context, rootID uint) (*models.HierarchyNode, error) {
	root := r.store.nodeCopy(rootID, true)
	if root == nil {
		return nil, nil
	}
	for _, childID := range r.store.childIDs(rootID) {
		child, err := r.SubtreeWithPricing(ctx, childID)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}
	return root, nil
}

func (r *fakeHierarchyNodeRepo) RootOf(ctx context.Context, nodeID uint) (*models.HierarchyNode, error) {
	node, ok := r.store.nodes[nodeID]
	if !ok {
		return nil, nil
	}
	for node.ParentID != nil {
		parent, ok := r.store.nodes[*node.ParentID]
		if !ok {
			break
		}
		node = parent
	}
	return r.store.nodeCopy(node.ID, false), nil
}

type fakePricingConfigRepo struct {
	store *fakeStore
}

func (r *fakePricingConfigRepo) ByID(ctx context.Context, id uint) (*models.PricingConfig, error) {
	for _, config := range r.store.configs {
		if config.ID == id {
			return config, nil
		}
	}
	return nil, nil
}

func (r *fakePricingConfigRepo) ByFilter(ctx context.Context, filter models.PricingConfigFilter, orderBy string, limit, offset int) ([]*models.PricingConfig, error) {
	var out []*models.PricingConfig
	for _, config := range r.store.configs {
		if filter.NodeID != nil && config.NodeID != *filter.NodeID {
			continue
		}
		out = append(out, config)
	}
	return out, nil
}

func (r *fakePricingConfigRepo) Save(ctx context.Context, config *models.PricingConfig) error {
	if config.ID == 0 {
		config.ID = r.store.nextSequence()
	}
	if config.UUID == uuid.Nil {
		config.UUID = uuid.New()
	}
	r.store.configs[config.NodeID] = config
	return nil
}

func (r *fakePricingConfigRepo) SaveBatch(ctx context.Context, configs []*models.PricingConfig) error {
	for _, config := range configs {
		if err := r.Save(ctx, config); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePricingConfigRepo) Count(ctx context.Context, filter models.PricingConfigFilter) (int64, error) {
	matched, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *fakePricingConfigRepo) Exists(ctx context.Context, filter models.PricingConfigFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakePricingConfigRepo) ByNodeID(ctx context.Context, nodeID uint) (*models.PricingConfig, error) {
	return r.store.configs[nodeID], nil
}

func (r *fakePricingConfigRepo) ReplaceForNode(ctx context.Context, nodeID uint, config *models.PricingConfig) error {
	config.NodeID = nodeID
	return r.Save(ctx, config)
}

func (r *fakePricingConfigRepo) DeleteForNode(ctx context.Context, nodeID uint) (bool, error) {
	if _, ok := r.store.configs[nodeID]; !ok {
		return false, nil
	}
	delete(r.store.configs, nodeID)
	return true, nil
}

type fakeDiscountRepo struct {
	store *fakeStore
}

func (r *fakeDiscountRepo) ByID(ctx context.Context, id uint) (*models.DiscountConfiguration, error) {
	return r.store.discounts[id], nil
}

func (r *fakeDiscountRepo) ByFilter(ctx context.Context, filter models.DiscountConfigurationFilter, orderBy string, limit, offset int) ([]*models.DiscountConfiguration, error) {
	var out []*models.DiscountConfiguration
	for _, d := range r.store.discounts {
		if filter.OperatorID != nil && d.OperatorID != *filter.OperatorID {
			continue
		}
		if filter.Type != nil && d.Type != *filter.Type {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDiscountRepo) Save(ctx context.Context, d *models.DiscountConfiguration) error {
	r.store.addDiscount(d)
	return nil
}

func (r *fakeDiscountRepo) SaveBatch(ctx context.Context, discounts []*models.DiscountConfiguration) error {
	for _, d := range discounts {
		if err := r.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeDiscountRepo) Count(ctx context.Context, filter models.DiscountConfigurationFilter) (int64, error) {
	matched, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *fakeDiscountRepo) Exists(ctx context.Context, filter models.DiscountConfigurationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakeDiscountRepo) ByUUID(ctx context.Context, discountUUID string) (*models.DiscountConfiguration, error) {
	for _, d := range r.store.discounts {
		if d.UUID.String() == discountUUID {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDiscountRepo) ByUUIDs(ctx context.Context, uuids []string) ([]*models.DiscountConfiguration, error) {
	// One row per matching record regardless of how often a UUID repeats,
	// same as an IN query.
	seen := make(map[string]struct{}, len(uuids))
	var out []*models.DiscountConfiguration
	for _, id := range uuids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if d, err := r.ByUUID(ctx, id); err == nil && d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDiscountRepo) ListByOperator(ctx context.Context, operatorID uint) ([]*models.DiscountConfiguration, error) {
	out, err := r.ByFilter(ctx, models.DiscountConfigurationFilter{OperatorID: &operatorID}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDiscountRepo) Update(ctx context.Context, d *models.DiscountConfiguration) error {
	r.store.discounts[d.ID] = d
	return nil
}

func (r *fakeDiscountRepo) Delete(ctx context.Context, id uint) error {
	delete(r.store.discounts, id)
	return nil
}

func (r *fakeDiscountRepo) IncrementUsage(ctx context.Context, id uint) error {
	if d, ok := r.store.discounts[id]; ok {
		d.UsageCount++
	}
	return nil
}

type fakeAuditRepo struct {
	store *fakeStore
}

func (r *fakeAuditRepo) ByID(ctx context.Context, id uint) (*models.PricingAuditLog, error) {
	for _, entry := range r.store.audits {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) ByFilter(ctx context.Context, filter models.PricingAuditLogFilter, orderBy string, limit, offset int) ([]*models.PricingAuditLog, error) {
	var out []*models.PricingAuditLog
	for _, entry := range r.store.audits {
		if filter.Action != nil && entry.Action != *filter.Action {
			continue
		}
		if filter.NodeID != nil && (entry.NodeID == nil || *entry.NodeID != *filter.NodeID) {
			continue
		}
		if filter.OperatorID != nil && (entry.OperatorID == nil || *entry.OperatorID != *filter.OperatorID) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *fakeAuditRepo) Save(ctx context.Context, entry *models.PricingAuditLog) error {
	if entry.ID == 0 {
		entry.ID = r.store.nextSequence()
	}
	r.store.audits = append(r.store.audits, entry)
	return nil
}

func (r *fakeAuditRepo) SaveBatch(ctx context.Context, entries []*models.PricingAuditLog) error {
	for _, entry := range entries {
		if err := r.Save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAuditRepo) Count(ctx context.Context, filter models.PricingAuditLogFilter) (int64, error) {
	matched, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (r *fakeAuditRepo) Exists(ctx context.Context, filter models.PricingAuditLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakeAuditRepo) ListByNode(ctx context.Context, nodeID uint, limit, offset int) ([]*models.PricingAuditLog, error) {
	return r.ByFilter(ctx, models.PricingAuditLogFilter{NodeID: &nodeID}, "", limit, offset)
}

func (r *fakeAuditRepo) ListByOperator(ctx context.Context, operatorID uint, limit, offset int) ([]*models.PricingAuditLog, error) {
	return r.ByFilter(ctx, models.PricingAuditLogFilter{OperatorID: &operatorID}, "", limit, offset)
}
