package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
)

// GORMBookRepository is a GORM implementation of BookRepository.
type GORMBookRepository struct {
	db *gorm.DB
}

// NewGORMBookRepository creates a new instance of GORMBookRepository.
func NewGORMBookRepository(db *gorm.DB) *GORMBookRepository {
	return &GORMBookRepository{
		db: db,
	}
}

// GetAll retrieves books matching the query, with their category preloaded
// for display.
func (r *GORMBookRepository) GetAll(query BookQuery) ([]models.Book, error) {
	tx := r.db.Preload("Category")
	if query.CategoryID != nil {
		tx = tx.Where("category_id = ?", *query.CategoryID)
	}
	if query.Search != "" {
		pattern := "%" + strings.ToLower(query.Search) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	}

	var books []models.Book
	if err := tx.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a single book by its ID from the database.
func (r *GORMBookRepository) GetByID(id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.Preload("Category").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by ID %d: %w", id, err)
	}
	return &book, nil
}

// GetByIDs retrieves the distinct books whose IDs appear in ids. Missing
// IDs are simply absent from the result; callers compare lengths.
func (r *GORMBookRepository) GetByIDs(ids []uint) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to get books by IDs: %w", err)
	}
	return books, nil
}

// Create creates a new book in the database.
func (r *GORMBookRepository) Create(book *models.Book) error {
	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update persists all fields of an existing book.
func (r *GORMBookRepository) Update(book *models.Book) error {
	res := r.db.Save(book)
	if res.Error != nil {
		return fmt.Errorf("failed to update book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %d: %w", book.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a book by its ID from the database.
func (r *GORMBookRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Book{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountByCategory returns how many books reference the given category.
func (r *GORMBookRepository) CountByCategory(categoryID uint) (int64, error) {
	var n int64
	if err := r.db.Model(&models.Book{}).Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count books for category %d: %w", categoryID, err)
	}
	return n, nil
}

// ReferencedByOrders reports whether any order item references the book.
func (r *GORMBookRepository) ReferencedByOrders(id uint) (bool, error) {
	var n int64
	if err := r.db.Model(&models.OrderItem{}).Where("book_id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to count order items for book %d: %w", id, err)
	}
	return n > 0, nil
}
