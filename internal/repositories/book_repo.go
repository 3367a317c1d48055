package repositories

import "github.com/AshivPrajapati/Online-Bookstore/internal/models"

// BookQuery holds the optional filters for listing books.
type BookQuery struct {
	CategoryID *uint
	// Search matches case-insensitively as a substring of title or author.
	Search string
}

// BookRepository defines the interface for book data access.
type BookRepository interface {
	GetAll(query BookQuery) ([]models.Book, error)
	GetByID(id uint) (*models.Book, error)
	GetByIDs(ids []uint) ([]models.Book, error)
	Create(book *models.Book) error
	Update(book *models.Book) error
	Delete(id uint) error
	CountByCategory(categoryID uint) (int64, error)
	ReferencedByOrders(id uint) (bool, error)
}
