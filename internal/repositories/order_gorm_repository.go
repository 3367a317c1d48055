package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves orders matching the query, newest first, with owner and
// line items (including their books) preloaded.
func (r *GORMOrderRepository) GetAll(query OrderQuery) ([]models.Order, error) {
	tx := r.db.Preload("User").Preload("Items.Book")
	if query.UserID != 0 {
		tx = tx.Where("user_id = ?", query.UserID)
	}
	if query.Status != "" {
		tx = tx.Where("LOWER(order_status) = ?", strings.ToLower(query.Status))
	}

	var orders []models.Order
	if err := tx.Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with owner and line items preloaded.
func (r *GORMOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("User").Preload("Items.Book").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order with its line items and decrements each book's
// stock, all in one transaction. The decrement is conditional on the stock
// still covering the quantity, so two concurrent orders cannot jointly
// oversell: the loser's update affects zero rows and the whole transaction
// rolls back with ErrInsufficientStock.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			res := tx.Model(&models.Book{}).
				Where("id = ? AND stock_quantity >= ?", item.BookID, item.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock for book %d: %w", item.BookID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("book %d: %w", item.BookID, ErrInsufficientStock)
			}
		}
		return nil
	})
}

// UpdateStatuses applies the provided status values; empty strings leave
// the corresponding field unchanged.
func (r *GORMOrderRepository) UpdateStatuses(id uint, orderStatus, paymentStatus string) error {
	updates := map[string]interface{}{}
	if orderStatus != "" {
		updates["order_status"] = orderStatus
	}
	if paymentStatus != "" {
		updates["payment_status"] = paymentStatus
	}
	if len(updates) == 0 {
		return nil
	}

	if err := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update statuses for order %d: %w", id, err)
	}
	return nil
}

// Cancel marks the order cancelled and credits every line item's quantity
// back to its book, in one transaction.
func (r *GORMOrderRepository) Cancel(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("order_status", models.OrderStatusCancelled).Error
		if err != nil {
			return fmt.Errorf("failed to cancel order %d: %w", order.ID, err)
		}
		return restoreStock(tx, order.Items)
	})
}

// Delete restores stock for every line item, then removes the order and
// its items, in one transaction.
func (r *GORMOrderRepository) Delete(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := restoreStock(tx, order.Items); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %d: %w", order.ID, err)
		}
		res := tx.Delete(&models.Order{}, order.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order %d: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %d: %w", order.ID, ErrNotFound)
		}
		return nil
	})
}

// restoreStock credits each item's quantity back to its book. Used by both
// undo paths so cancellation and deletion cannot drift apart.
func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		err := tx.Model(&models.Book{}).Where("id = ?", item.BookID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to restore stock for book %d: %w", item.BookID, err)
		}
	}
	return nil
}
