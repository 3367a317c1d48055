package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/repositories"
)

// EventPublisher publishes order lifecycle events to the message broker.
// A nil publisher disables publishing.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderService handles the order workflow: stock validation, atomic order
// creation with stock reservation, status transitions, and the two
// stock-restoring undo paths (cancel, delete).
type OrderService struct {
	orderRepo repositories.OrderRepository
	bookRepo  repositories.BookRepository
	events    EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, bookRepo repositories.BookRepository, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		events:    events,
	}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	BookID   uint
	Quantity int
}

// CreateOrderInput carries the fields accepted at order placement.
type CreateOrderInput struct {
	ShippingAddress string
	PaymentMethod   string
	Items           []OrderItemInput
}

// CreateOrder validates stock for every requested item, then creates the
// order with price snapshots and decrements inventory as one atomic unit
// of work. No stock changes are applied before the whole validation pass
// completes.
func (s *OrderService) CreateOrder(userID uint, in CreateOrderInput) (*models.Order, error) {
	ids := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.BookID)
	}

	books, err := s.bookRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	// The fetch is distinct, the request list is not: duplicate book IDs
	// in one request fail here rather than being summed.
	if len(books) != len(ids) {
		return nil, NewValidationError("one or more books not found")
	}

	byID := make(map[uint]*models.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}

	for _, item := range in.Items {
		book := byID[item.BookID]
		if book.StockQuantity < item.Quantity {
			return nil, NewValidationError("insufficient stock for book '%s'. Available: %d, Requested: %d",
				book.Title, book.StockQuantity, item.Quantity)
		}
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for _, item := range in.Items {
		book := byID[item.BookID]
		lineTotal := book.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, models.OrderItem{
			BookID:     item.BookID,
			Quantity:   item.Quantity,
			UnitPrice:  book.Price,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	order := &models.Order{
		UserID:          userID,
		OrderDate:       time.Now(),
		TotalAmount:     total,
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Items:           items,
	}

	if err := s.orderRepo.Create(order); err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			// A concurrent order consumed the stock between validation
			// and commit; nothing was applied.
			return nil, NewValidationError("insufficient stock for one or more books")
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}

	s.publish("order.created", created)
	return created, nil
}

// GetOrders lists orders: admins see all, customers only their own. The
// optional status filter matches order_status case-insensitively.
func (s *OrderService) GetOrders(callerID uint, role models.Role, status string) ([]models.Order, error) {
	query := repositories.OrderQuery{Status: status}
	if !role.IsAdmin() {
		query.UserID = callerID
	}
	return s.orderRepo.GetAll(query)
}

// GetMyOrders lists the caller's own orders, newest first.
func (s *OrderService) GetMyOrders(callerID uint) ([]models.Order, error) {
	return s.orderRepo.GetAll(repositories.OrderQuery{UserID: callerID})
}

// GetOrder fetches one order, enforcing that non-admin callers own it.
func (s *OrderService) GetOrder(id, callerID uint, role models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !role.IsAdmin() && order.UserID != callerID {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateOrderStatuses applies new order and/or payment status values.
// Either may be empty to leave the field unchanged; provided values are
// validated against their enumerations case-insensitively and stored in
// lowercase. The two status fields are independent: no coupling between
// them is enforced.
func (s *OrderService) UpdateOrderStatuses(id uint, orderStatus, paymentStatus string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if orderStatus != "" && !models.ValidOrderStatus(orderStatus) {
		return NewValidationError("invalid order status")
	}
	if paymentStatus != "" && !models.ValidPaymentStatus(paymentStatus) {
		return NewValidationError("invalid payment status")
	}

	err = s.orderRepo.UpdateStatuses(order.ID, strings.ToLower(orderStatus), strings.ToLower(paymentStatus))
	if err != nil {
		return err
	}

	updated, err := s.orderRepo.GetByID(order.ID)
	if err == nil {
		s.publish("order.status_updated", updated)
	}
	return nil
}

// CancelOrder cancels a pending or confirmed order, crediting every line
// item's quantity back to its book atomically. Non-admin callers may only
// cancel their own orders.
func (s *OrderService) CancelOrder(id, callerID uint, role models.Role) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !role.IsAdmin() && order.UserID != callerID {
		return ErrForbidden
	}
	if !order.Cancellable() {
		return NewValidationError("order cannot be cancelled at this stage")
	}

	if err := s.orderRepo.Cancel(order); err != nil {
		return err
	}

	order.OrderStatus = models.OrderStatusCancelled
	s.publish("order.cancelled", order)
	return nil
}

// DeleteOrder removes a pending order, restoring stock identically to
// cancellation before the rows disappear.
func (s *OrderService) DeleteOrder(id uint) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if strings.ToLower(order.OrderStatus) != models.OrderStatusPending {
		return NewValidationError("only pending orders can be deleted")
	}
	return s.orderRepo.Delete(order)
}

// publish sends an order lifecycle event. Publishing is best-effort: a
// broker failure never fails the request that triggered it.
func (s *OrderService) publish(routingKey string, order *models.Order) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event_id":       uuid.New().String(),
		"order_id":       order.ID,
		"user_id":        order.UserID,
		"order_status":   order.OrderStatus,
		"payment_status": order.PaymentStatus,
		"total_amount":   order.TotalAmount,
	})
	if err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("failed to marshal order event")
		return
	}

	if err := s.events.Publish(routingKey, body); err != nil {
		log.Warn().Err(err).Str("event", routingKey).Uint("order_id", order.ID).Msg("failed to publish order event")
		return
	}
	log.Info().Str("event", routingKey).Uint("order_id", order.ID).Msg("order event published")
}
