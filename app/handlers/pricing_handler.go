// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/parqhive/pricing-service/app/dto"
	"github.com/parqhive/pricing-service/app/middleware"
	businessflow "github.com/parqhive/pricing-service/business_flow"
	"github.com/parqhive/pricing-service/utils"
)

// PricingHandlerInterface defines the contract for pricing handlers
type PricingHandlerInterface interface {
	GetPricingHierarchy(c fiber.Ctx) error
	ResolvePricing(c fiber.Ctx) error
	Quote(c fiber.Ctx) error
	CreateOrUpdatePricing(c fiber.Ctx) error
	RemovePricing(c fiber.Ctx) error
	CopyToChildren(c fiber.Ctx) error
}

// PricingHandler handles pricing-related HTTP requests
type PricingHandler struct {
	inheritanceFlow businessflow.PricingInheritanceFlow
	pricingFlow     businessflow.PricingFlow
	quoteFlow       businessflow.QuoteFlow
	validator       *validator.Validate
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(
	inheritanceFlow businessflow.PricingInheritanceFlow,
	pricingFlow businessflow.PricingFlow,
	quoteFlow businessflow.QuoteFlow,
) *PricingHandler {
	return &PricingHandler{
		inheritanceFlow: inheritanceFlow,
		pricingFlow:     pricingFlow,
		quoteFlow:       quoteFlow,
		validator:       validator.New(),
	}
}

func (h *PricingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PricingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetPricingHierarchy returns the hierarchy snapshot of a location
// @Summary Get Pricing Hierarchy
// @Description Get the full hierarchy tree of a location with effective pricing sources
// @Tags Pricing
// @Produce json
// @Param locationId path string true "Location UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetPricingHierarchyResponse} "Hierarchy retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Location not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/hierarchy/{locationId} [get]
func (h *PricingHandler) GetPricingHierarchy(c fiber.Ctx) error {
	locationUUID := c.Params("locationId")
	if locationUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Location UUID is required", "MISSING_LOCATION_UUID", nil)
	}

	result, err := h.inheritanceFlow.GetPricingHierarchy(h.createRequestContext(c, "/api/v1/pricing/hierarchy/"+locationUUID), locationUUID)
	if err != nil {
		if businessflow.IsLocationNotFound(err) || businessflow.IsNodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Location not found", "LOCATION_NOT_FOUND", nil)
		}

		log.Println("Hierarchy retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Hierarchy retrieval failed", "HIERARCHY_LOAD_FAILED", nil)
	}

	outcome := "miss"
	if result.Cached {
		outcome = "hit"
	}
	middleware.RecordHierarchyCache(outcome)

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ResolvePricing reports the effective pricing of a node and its source
// @Summary Resolve Pricing
// @Description Resolve which pricing configuration governs a node (own, inherited, or default)
// @Tags Pricing
// @Produce json
// @Param nodeId path string true "Node UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ResolvePricingResponse} "Pricing resolved successfully"
// @Failure 404 {object} dto.APIResponse "Node not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/resolve/{nodeId} [get]
func (h *PricingHandler) ResolvePricing(c fiber.Ctx) error {
	nodeUUID := c.Params("nodeId")
	if nodeUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Node UUID is required", "MISSING_NODE_UUID", nil)
	}

	result, err := h.inheritanceFlow.Resolve(h.createRequestContext(c, "/api/v1/pricing/resolve/"+nodeUUID), nodeUUID)
	if err != nil {
		if businessflow.IsNodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Node not found", "NODE_NOT_FOUND", nil)
		}

		log.Println("Pricing resolution failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing resolution failed", "PRICING_RESOLVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Quote computes a price quote for a booking context
// @Summary Quote
// @Description Compute a full price quote against a node's effective pricing
// @Tags Pricing
// @Accept json
// @Produce json
// @Param nodeId path string true "Node UUID"
// @Param request body dto.QuoteRequest true "Booking context"
// @Success 200 {object} dto.APIResponse{data=dto.QuoteResponse} "Quote calculated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Node or discount not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/quote/{nodeId} [post]
func (h *PricingHandler) Quote(c fiber.Ctx) error {
	nodeUUID := c.Params("nodeId")
	if nodeUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Node UUID is required", "MISSING_NODE_UUID", nil)
	}

	var req dto.QuoteRequest
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

	result, err := h.quoteFlow.Quote(h.createRequestContext(c, "/api/v1/pricing/quote/"+nodeUUID), nodeUUID, &req)
	if err != nil {
		if businessflow.IsNodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Node not found", "NODE_NOT_FOUND", nil)
		}
		if businessflow.IsDiscountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Discount configuration not found", "DISCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Quote calculation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Quote calculation failed", "QUOTE_FAILED", nil)
	}

	middleware.RecordQuote(result.Quote.PricingSource)

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// CreateOrUpdatePricing replaces a node's owned pricing configuration
// @Summary Create or Update Pricing
// @Description Replace the owned pricing configuration of a hierarchy node
// @Tags Pricing
// @Accept json
// @Produce json
// @Param level path string true "Hierarchy level" Enums(location, section, zone, spot)
// @Param nodeId path string true "Node UUID"
// @Param request body dto.PricingConfigInput true "Pricing configuration"
// @Success 200 {object} dto.APIResponse{data=dto.CreateOrUpdatePricingResponse} "Pricing saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Node not found"
// @Failure 409 {object} dto.APIResponse "Duplicate vehicle type rate"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/{level}/{nodeId} [put]
func (h *PricingHandler) CreateOrUpdatePricing(c fiber.Ctx) error {
	level := c.Params("level")
	nodeUUID := c.Params("nodeId")
	if level == "" || nodeUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Hierarchy level and node UUID are required", "MISSING_PATH_PARAMS", nil)
	}

	var req dto.PricingConfigInput
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

	// Get client information
	metadata := h.clientMetadata(c)

	result, err := h.pricingFlow.CreateOrUpdatePricing(h.createRequestContext(c, "/api/v1/pricing/"+level+"/"+nodeUUID), level, nodeUUID, &req, metadata)
	if err != nil {
		if businessflow.IsNodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Node not found", "NODE_NOT_FOUND", nil)
		}
		if businessflow.IsDuplicateVehicleTypeRate(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, err.Error(), "DUPLICATE_VEHICLE_TYPE", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Pricing save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing save failed", "PRICING_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// RemovePricing drops a node's owned pricing configuration
// @Summary Remove Pricing
// @Description Remove the owned pricing configuration of a hierarchy node so it falls back to inheritance
// @Tags Pricing
// @Produce json
// @Param level path string true "Hierarchy level" Enums(location, section, zone, spot)
// @Param nodeId path string true "Node UUID"
// @Success 200 {object} dto.APIResponse{data=dto.RemovePricingResponse} "Pricing removed"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Node not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/{level}/{nodeId} [delete]
func (h *PricingHandler) RemovePricing(c fiber.Ctx) error {
	level := c.Params("level")
	nodeUUID := c.Params("nodeId")
	if level == "" || nodeUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Hierarchy level and node UUID are required", "MISSING_PATH_PARAMS", nil)
	}

	metadata := h.clientMetadata(c)

	result, err := h.pricingFlow.RemovePricing(h.createRequestContext(c, "/api/v1/pricing/"+level+"/"+nodeUUID), level, nodeUUID, metadata)
	if err != nil {
		if businessflow.IsNodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Node not found", "NODE_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Pricing removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing removal failed", "PRICING_REMOVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// CopyToChildren clones a node's effective pricing onto children without one
// @Summary Copy Pricing To Children
// @Description Clone the node's effective pricing onto every direct child without an owned configuration
// @Tags Pricing
// @Accept json
// @Produce json
// @Param level path string true "Hierarchy level" Enums(location, section, zone)
// @Param nodeId path string true "Node UUID"
// @Param request body dto.CopyToChildrenRequest false "Copy options"
// @Success 200 {object} dto.APIResponse{data=dto.CopyToChildrenResponse} "Pricing copied"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Node not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/{level}/{nodeId}/copy-to-children [post]
func (h *PricingHandler) CopyToChildren(c fiber.Ctx) error {
	level := c.Params("level")
	nodeUUID := c.Params("nodeId")
	if level == "" || nodeUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Hierarchy level and node UUID are required", "MISSING_PATH_PARAMS", nil)
	}

	// Body is optional; an empty body means a non-recursive copy
	var req dto.CopyToChildrenRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	metadata := h.clientMetadata(c)

	result, err := h.inheritanceFlow.CopyToChildren(h.createRequestContext(c, "/api/v1/pricing/"+level+"/"+nodeUUID+"/copy-to-children"), level, nodeUUID, req.Recursive, metadata)
	if err != nil {
		if businessflow.IsNodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Node not found", "NODE_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Copy to children failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Copy to children failed", "PRICING_COPY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// clientMetadata extracts client information for audit logging
func (h *PricingHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *PricingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *PricingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	// Create context with custom timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	// Propagate the authenticated operator for audit trails
	if operatorID, ok := c.Locals("operator_id").(uint); ok {
		ctx = context.WithValue(ctx, utils.OperatorIDKey, operatorID)
	}

	return ctx
}
