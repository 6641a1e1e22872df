package businessflow

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/repository"
	"github.com/parqhive/pricing-service/utils"
)

// DiscountFlow manages an operator's discount configurations. Every operation
// is scoped to the authenticated operator; discounts are never visible or
// editable across operator boundaries.
type DiscountFlow interface {
	CreateDiscount(ctx context.Context, operatorID uint, req *dto.CreateDiscountRequest, metadata *ClientMetadata) (*dto.CreateDiscountResponse, error)
	UpdateDiscount(ctx context.Context, operatorID uint, discountUUID string, req *dto.UpdateDiscountRequest, metadata *ClientMetadata) (*dto.UpdateDiscountResponse, error)
	ListDiscounts(ctx context.Context, operatorID uint) (*dto.ListDiscountsResponse, error)
	DeleteDiscount(ctx context.Context, operatorID uint, discountUUID string, metadata *ClientMetadata) (*dto.DeleteDiscountResponse, error)
}

type DiscountFlowImpl struct {
	discountRepo repository.DiscountConfigurationRepository
	auditRepo    repository.PricingAuditLogRepository
}

func NewDiscountFlow(discountRepo repository.DiscountConfigurationRepository, auditRepo repository.PricingAuditLogRepository) DiscountFlow {
	return &DiscountFlowImpl{
		discountRepo: discountRepo,
		auditRepo:    auditRepo,
	}
}

// CreateDiscount stores a new discount configuration owned by the operator.
func (f *DiscountFlowImpl) CreateDiscount(ctx context.Context, operatorID uint, req *dto.CreateDiscountRequest, metadata *ClientMetadata) (*dto.CreateDiscountResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("DISCOUNT_NAME_REQUIRED", "Discount name is required", ErrDiscountNameRequired)
	}
	if !models.IsValidDiscountType(req.Type) {
		return nil, NewBusinessError("DISCOUNT_TYPE_INVALID", "Discount type must be senior, pwd, or custom", ErrDiscountTypeInvalid)
	}
	if req.Percentage < 0 || req.Percentage > 100 {
		return nil, NewBusinessError("DISCOUNT_PERCENT_OUT_OF_RANGE", "Discount percentage must be between 0 and 100", ErrDiscountPercentOutOfRange)
	}

	discount := &models.DiscountConfiguration{
		OperatorID:  operatorID,
		Name:        name,
		Type:        req.Type,
		Percentage:  req.Percentage,
		IsVATExempt: utils.ToPtr(req.IsVATExempt),
		IsActive:    utils.ToPtr(true),
	}
	if req.IsActive != nil {
		discount.IsActive = req.IsActive
	}
	if req.Conditions != nil {
		conditions, err := marshalConditions(req.Conditions)
		if err != nil {
			return nil, err
		}
		discount.Conditions = conditions
	}

	if err := f.discountRepo.Save(ctx, discount); err != nil {
		return nil, NewBusinessError("DISCOUNT_SAVE_FAILED", "Failed to create discount configuration", err)
	}

	f.writeAudit(ctx, models.AuditActionDiscountCreated, operatorID, metadata, map[string]any{
		"discount_uuid": discount.UUID.String(),
		"type":          discount.Type,
		"percentage":    discount.Percentage,
	})

	return &dto.CreateDiscountResponse{
		Message:  "Discount configuration created successfully",
		Discount: ToDiscountDTO(discount),
	}, nil
}

// UpdateDiscount applies a partial update to an owned discount.
func (f *DiscountFlowImpl) UpdateDiscount(ctx context.Context, operatorID uint, discountUUID string, req *dto.UpdateDiscountRequest, metadata *ClientMetadata) (*dto.UpdateDiscountResponse, error) {
	if req.Name == nil && req.Percentage == nil && req.IsVATExempt == nil && req.Conditions == nil && req.IsActive == nil {
		return nil, NewBusinessError("DISCOUNT_UPDATE_EMPTY", "At least one field must be provided for update", ErrDiscountUpdateFieldMissing)
	}

	discount, err := f.ownedDiscount(ctx, operatorID, discountUUID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewBusinessError("DISCOUNT_NAME_REQUIRED", "Discount name is required", ErrDiscountNameRequired)
		}
		discount.Name = name
	}
	if req.Percentage != nil {
		if *req.Percentage < 0 || *req.Percentage > 100 {
			return nil, NewBusinessError("DISCOUNT_PERCENT_OUT_OF_RANGE", "Discount percentage must be between 0 and 100", ErrDiscountPercentOutOfRange)
		}
		discount.Percentage = *req.Percentage
	}
	if req.IsVATExempt != nil {
		discount.IsVATExempt = req.IsVATExempt
	}
	if req.IsActive != nil {
		discount.IsActive = req.IsActive
	}
	if req.Conditions != nil {
		conditions, err := marshalConditions(req.Conditions)
		if err != nil {
			return nil, err
		}
		discount.Conditions = conditions
	}

	if err := f.discountRepo.Update(ctx, discount); err != nil {
		return nil, NewBusinessError("DISCOUNT_SAVE_FAILED", "Failed to update discount configuration", err)
	}

	f.writeAudit(ctx, models.AuditActionDiscountUpdated, operatorID, metadata, map[string]any{
		"discount_uuid": discount.UUID.String(),
	})

	return &dto.UpdateDiscountResponse{
		Message:  "Discount configuration updated successfully",
		Discount: ToDiscountDTO(discount),
	}, nil
}

// ListDiscounts returns the operator's discount configurations, active and
// inactive alike.
func (f *DiscountFlowImpl) ListDiscounts(ctx context.Context, operatorID uint) (*dto.ListDiscountsResponse, error) {
	discounts, err := f.discountRepo.ListByOperator(ctx, operatorID)
	if err != nil {
		return nil, NewBusinessError("DISCOUNT_LIST_FAILED", "Failed to list discount configurations", err)
	}

	items := make([]dto.DiscountConfigurationDTO, 0, len(discounts))
	for _, discount := range discounts {
		items = append(items, ToDiscountDTO(discount))
	}

	return &dto.ListDiscountsResponse{
		Message: "Discount configurations retrieved successfully",
		Items:   items,
	}, nil
}

// DeleteDiscount removes an owned discount configuration.
func (f *DiscountFlowImpl) DeleteDiscount(ctx context.Context, operatorID uint, discountUUID string, metadata *ClientMetadata) (*dto.DeleteDiscountResponse, error) {
	discount, err := f.ownedDiscount(ctx, operatorID, discountUUID)
	if err != nil {
		return nil, err
	}

	if err := f.discountRepo.Delete(ctx, discount.ID); err != nil {
		return nil, NewBusinessError("DISCOUNT_DELETE_FAILED", "Failed to delete discount configuration", err)
	}

	f.writeAudit(ctx, models.AuditActionDiscountDeleted, operatorID, metadata, map[string]any{
		"discount_uuid": discount.UUID.String(),
	})

	return &dto.DeleteDiscountResponse{
		Message: "Discount configuration deleted successfully",
	}, nil
}

// ownedDiscount loads a discount and enforces operator ownership.
func (f *DiscountFlowImpl) ownedDiscount(ctx context.Context, operatorID uint, discountUUID string) (*models.DiscountConfiguration, error) {
	discount, err := f.discountRepo.ByUUID(ctx, discountUUID)
	if err != nil {
		return nil, NewBusinessError("DISCOUNT_LOAD_FAILED", "Failed to load discount configuration", err)
	}
	if discount == nil {
		return nil, NewBusinessError("DISCOUNT_NOT_FOUND", "Discount configuration not found", ErrDiscountNotFound)
	}
	if discount.OperatorID != operatorID {
		return nil, NewBusinessError("DISCOUNT_ACCESS_DENIED", "Discount belongs to another operator", ErrDiscountAccessDenied)
	}
	return discount, nil
}

func marshalConditions(conditions *dto.DiscountConditionsDTO) (json.RawMessage, error) {
	if conditions.MinAmount != nil && *conditions.MinAmount < 0 {
		return nil, NewBusinessError("DISCOUNT_CONDITIONS_INVALID", "Minimum amount must not be negative", ErrDiscountConditionsInvalid)
	}
	if conditions.MaxUsage != nil && *conditions.MaxUsage < 1 {
		return nil, NewBusinessError("DISCOUNT_CONDITIONS_INVALID", "Maximum usage must be at least 1", ErrDiscountConditionsInvalid)
	}
	bs, err := json.Marshal(models.DiscountConditions{
		MinAmount: conditions.MinAmount,
		MaxUsage:  conditions.MaxUsage,
	})
	if err != nil {
		return nil, NewBusinessError("DISCOUNT_CONDITIONS_INVALID", "Discount conditions are invalid", ErrDiscountConditionsInvalid)
	}
	return bs, nil
}

func (f *DiscountFlowImpl) writeAudit(ctx context.Context, action string, operatorID uint, metadata *ClientMetadata, extra map[string]any) {
	entry := &models.PricingAuditLog{
		Action:     action,
		OperatorID: &operatorID,
		Success:    utils.ToPtr(true),
		CreatedAt:  utils.UTCNow(),
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
	if err := f.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("Failed to write discount audit log (%s): %v", action, err)
	}
}
