// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/parqhive/pricing-service/app/dto"
	businessflow "github.com/parqhive/pricing-service/business_flow"
	"github.com/parqhive/pricing-service/utils"
)

// DiscountHandlerInterface defines the contract for discount handlers
type DiscountHandlerInterface interface {
	CreateDiscount(c fiber.Ctx) error
	UpdateDiscount(c fiber.Ctx) error
	ListDiscounts(c fiber.Ctx) error
	DeleteDiscount(c fiber.Ctx) error
}

// DiscountHandler handles discount-related HTTP requests
type DiscountHandler struct {
	discountFlow businessflow.DiscountFlow
	validator    *validator.Validate
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountFlow businessflow.DiscountFlow) *DiscountHandler {
	return &DiscountHandler{
		discountFlow: discountFlow,
		validator:    validator.New(),
	}
}

func (h *DiscountHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DiscountHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateDiscount creates a discount configuration for the operator
// @Summary Create Discount
// @Description Create a new discount configuration owned by the authenticated operator
// @Tags Discounts
// @Accept json
// @Produce json
// @Param request body dto.CreateDiscountRequest true "Discount configuration"
// @Success 201 {object} dto.APIResponse{data=dto.CreateDiscountResponse} "Discount created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/discounts [post]
func (h *DiscountHandler) CreateDiscount(c fiber.Ctx) error {
	var req dto.CreateDiscountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	operatorID, ok := c.Locals("operator_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	metadata := h.clientMetadata(c)

	result, err := h.discountFlow.CreateDiscount(h.createRequestContext(c, "/api/v1/discounts"), operatorID, &req, metadata)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Discount creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Discount creation failed", "DISCOUNT_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// UpdateDiscount partially updates an owned discount configuration
// @Summary Update Discount
// @Description Partially update a discount configuration owned by the authenticated operator
// @Tags Discounts
// @Accept json
// @Produce json
// @Param uuid path string true "Discount UUID"
// @Param request body dto.UpdateDiscountRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateDiscountResponse} "Discount updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Discount belongs to another operator"
// @Failure 404 {object} dto.APIResponse "Discount not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/discounts/{uuid} [put]
func (h *DiscountHandler) UpdateDiscount(c fiber.Ctx) error {
	discountUUID := c.Params("uuid")
	if discountUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Discount UUID is required", "MISSING_DISCOUNT_UUID", nil)
	}

	var req dto.UpdateDiscountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	operatorID, ok := c.Locals("operator_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	metadata := h.clientMetadata(c)

	result, err := h.discountFlow.UpdateDiscount(h.createRequestContext(c, "/api/v1/discounts/"+discountUUID), operatorID, discountUUID, &req, metadata)
	if err != nil {
		if businessflow.IsDiscountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Discount configuration not found", "DISCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsDiscountAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Discount belongs to another operator", "DISCOUNT_ACCESS_DENIED", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Discount update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Discount update failed", "DISCOUNT_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListDiscounts lists the operator's discount configurations
// @Summary List Discounts
// @Description List all discount configurations owned by the authenticated operator
// @Tags Discounts
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListDiscountsResponse} "Discounts retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/discounts [get]
func (h *DiscountHandler) ListDiscounts(c fiber.Ctx) error {
	operatorID, ok := c.Locals("operator_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	result, err := h.discountFlow.ListDiscounts(h.createRequestContext(c, "/api/v1/discounts"), operatorID)
	if err != nil {
		log.Println("Discount listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Discount listing failed", "DISCOUNT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteDiscount deletes an owned discount configuration
// @Summary Delete Discount
// @Description Delete a discount configuration owned by the authenticated operator
// @Tags Discounts
// @Produce json
// @Param uuid path string true "Discount UUID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteDiscountResponse} "Discount deleted successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Discount belongs to another operator"
// @Failure 404 {object} dto.APIResponse "Discount not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/discounts/{uuid} [delete]
func (h *DiscountHandler) DeleteDiscount(c fiber.Ctx) error {
	discountUUID := c.Params("uuid")
	if discountUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Discount UUID is required", "MISSING_DISCOUNT_UUID", nil)
	}

	operatorID, ok := c.Locals("operator_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	metadata := h.clientMetadata(c)

	result, err := h.discountFlow.DeleteDiscount(h.createRequestContext(c, "/api/v1/discounts/"+discountUUID), operatorID, discountUUID, metadata)
	if err != nil {
		if businessflow.IsDiscountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Discount configuration not found", "DISCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsDiscountAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Discount belongs to another operator", "DISCOUNT_ACCESS_DENIED", nil)
		}

		log.Println("Discount deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Discount deletion failed", "DISCOUNT_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// clientMetadata extracts client information for audit logging
func (h *DiscountHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *DiscountHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	if operatorID, ok := c.Locals("operator_id").(uint); ok {
		ctx = context.WithValue(ctx, utils.OperatorIDKey, operatorID)
	}

	return ctx
}
