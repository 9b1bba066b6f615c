package handlers

import (
	"errors"
	"log"

	"kirim/internal/repositories"
	"kirim/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService  *services.OrderService
	statusService *services.OrderStatusService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, statusService *services.OrderStatusService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		statusService: statusService,
	}
}

// RegisterPublicRoutes registers the checkout route.
func (h *OrderHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/orders", h.HandleCreateOrder)
}

// RegisterAdminRoutes registers the order administration routes; the caller
// wraps them in the auth middleware.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleCreateOrder accepts a checkout cart and creates a Pending order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	summary, err := h.orderService.CreateOrder(req)
	if err != nil {
		return orderErrorResponse(c, err, "Could not create order")
	}

	return c.Status(fiber.StatusCreated).JSON(summary)
}

// HandleListOrders returns a filtered, paginated order listing.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		DateRange: c.Query("range"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 20),
	}

	orders, total, err := h.orderService.ListOrders(filter)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   filter.Page,
		"limit":  filter.Limit,
	})
}

// HandleGetOrderByID retrieves a single order with its lines.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		return orderErrorResponse(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus applies a status transition to an order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.statusService.TransitionStatus(orderID, updateData.Status)
	if err != nil {
		return orderErrorResponse(c, err, "Could not update order status")
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// orderErrorResponse maps service error types onto HTTP statuses.
func orderErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		stockErr      *services.InsufficientStockError
		transitionErr *services.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   validationErr.Error(),
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Insufficient stock",
			"error":   stockErr.Error(),
		})
	case errors.As(err, &transitionErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order status",
			"error":   transitionErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFoundErr.Error(),
		})
	default:
		log.Printf("Unhandled order error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": fallback,
			"error":   err.Error(),
		})
	}
}
