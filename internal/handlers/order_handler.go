package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/AshivPrajapati/Online-Bookstore/internal/middleware"
	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. All require authentication;
// status updates and deletion additionally require admin.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/my-orders", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Put("/:id/status", admin, h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", admin, h.HandleDeleteOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// CreateOrderItemRequest is one requested line of a new order.
type CreateOrderItemRequest struct {
	BookID   uint `json:"book_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest represents the request body for order placement.
type CreateOrderRequest struct {
	ShippingAddress string                   `json:"shipping_address" validate:"required"`
	PaymentMethod   string                   `json:"payment_method" validate:"omitempty,max=50"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest carries the optional status updates; empty
// fields leave the corresponding value unchanged.
type UpdateOrderStatusRequest struct {
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

// OrderItemResponse is a line item with its book denormalized for display.
type OrderItemResponse struct {
	OrderItemID uint            `json:"order_item_id"`
	BookID      uint            `json:"book_id"`
	BookTitle   string          `json:"book_title"`
	BookAuthor  string          `json:"book_author"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderResponse is the transfer shape of an order.
type OrderResponse struct {
	OrderID         uint                `json:"order_id"`
	UserID          uint                `json:"user_id"`
	Username        string              `json:"username"`
	OrderDate       time.Time           `json:"order_date"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	OrderStatus     string              `json:"order_status"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method,omitempty"`
	PaymentStatus   string              `json:"payment_status"`
	Items           []OrderItemResponse `json:"items"`
}

func toOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:         order.ID,
		UserID:          order.UserID,
		OrderDate:       order.OrderDate,
		TotalAmount:     order.TotalAmount,
		OrderStatus:     order.OrderStatus,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Items:           make([]OrderItemResponse, 0, len(order.Items)),
	}
	if order.User != nil {
		resp.Username = order.User.Username
	}
	for _, item := range order.Items {
		ir := OrderItemResponse{
			OrderItemID: item.ID,
			BookID:      item.BookID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
		if item.Book != nil {
			ir.BookTitle = item.Book.Title
			ir.BookAuthor = item.Book.Author
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

func toOrderResponses(orders []models.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp
}

// HandleGetOrders lists orders scoped by role, optionally filtered by
// status.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetOrders(middleware.CallerID(c), middleware.CallerRole(c), c.Query("status"))
	if err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.JSON(toOrderResponses(orders))
}

// HandleGetMyOrders lists the caller's own orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetMyOrders(middleware.CallerID(c))
	if err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.JSON(toOrderResponses(orders))
}

// HandleGetOrder retrieves a single order, enforcing ownership for
// non-admin callers.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order id",
		})
	}

	order, err := h.service.GetOrder(id, middleware.CallerID(c), middleware.CallerRole(c))
	if err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.JSON(toOrderResponse(order))
}

// HandleCreateOrder places a new order for the authenticated caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	input := services.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.OrderItemInput{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		})
	}

	order, err := h.service.CreateOrder(middleware.CallerID(c), input)
	if err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// HandleUpdateOrderStatus updates the order and/or payment status. Admin
// only.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order id",
		})
	}

	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.service.UpdateOrderStatuses(id, req.OrderStatus, req.PaymentStatus); err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.JSON(fiber.Map{
		"message":  "Order status updated successfully",
		"order_id": id,
	})
}

// HandleCancelOrder cancels a pending or confirmed order, restoring stock.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order id",
		})
	}

	if err := h.service.CancelOrder(id, middleware.CallerID(c), middleware.CallerRole(c)); err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
	})
}

// HandleDeleteOrder deletes a pending order, restoring stock. Admin only.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order id",
		})
	}

	if err := h.service.DeleteOrder(id); err != nil {
		return respondServiceError(c, err, "Order not found")
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully",
	})
}
