package repositories

import "github.com/AshivPrajapati/Online-Bookstore/internal/models"

// OrderQuery holds the optional filters for listing orders.
type OrderQuery struct {
	// UserID scopes the listing to one owner; zero means all users.
	UserID uint
	// Status filters on order_status, case-insensitive exact match.
	Status string
}

// OrderRepository defines the interface for order data access. Create,
// Cancel and Delete each commit their stock movement and row changes as a
// single transaction.
type OrderRepository interface {
	GetAll(query OrderQuery) ([]models.Order, error)
	GetByID(id uint) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatuses(id uint, orderStatus, paymentStatus string) error
	Cancel(order *models.Order) error
	Delete(order *models.Order) error
}
