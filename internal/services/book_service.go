package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/repositories"
)

// BookService handles business logic related to the book catalog.
type BookService struct {
	repo repositories.BookRepository
}

// NewBookService creates a new BookService.
func NewBookService(repo repositories.BookRepository) *BookService {
	return &BookService{
		repo: repo,
	}
}

// BookPatch is a partial update: nil fields are untouched. For title,
// author and publisher an explicit empty string is also treated as
// untouched; isbn, description and image URL may be explicitly cleared.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	CategoryID      *uint
	Description     *string
	Price           *decimal.Decimal
	StockQuantity   *int
	ImageURL        *string
	PublicationDate *time.Time
	Publisher       *string
}

// GetBooks retrieves books matching the optional category and search
// filters.
func (s *BookService) GetBooks(query repositories.BookQuery) ([]models.Book, error) {
	return s.repo.GetAll(query)
}

// GetBookByID retrieves a single book by its ID.
func (s *BookService) GetBookByID(id uint) (*models.Book, error) {
	return s.repo.GetByID(id)
}

// CreateBook creates a new catalog entry.
func (s *BookService) CreateBook(book *models.Book) (*models.Book, error) {
	if err := s.repo.Create(book); err != nil {
		return nil, err
	}
	// Re-read so the category association is populated for the response.
	return s.repo.GetByID(book.ID)
}

// UpdateBook applies a partial patch to an existing book, field by field.
func (s *BookService) UpdateBook(id uint, patch BookPatch) (*models.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && *patch.Title != "" {
		book.Title = *patch.Title
	}
	if patch.Author != nil && *patch.Author != "" {
		book.Author = *patch.Author
	}
	if patch.ISBN != nil {
		book.ISBN = *patch.ISBN
	}
	if patch.CategoryID != nil {
		book.CategoryID = patch.CategoryID
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.Price != nil {
		book.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		book.StockQuantity = *patch.StockQuantity
	}
	if patch.ImageURL != nil {
		book.ImageURL = *patch.ImageURL
	}
	if patch.PublicationDate != nil {
		book.PublicationDate = patch.PublicationDate
	}
	if patch.Publisher != nil && *patch.Publisher != "" {
		book.Publisher = *patch.Publisher
	}

	if err := s.repo.Update(book); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// DeleteBook removes a book unless order items still reference it.
func (s *BookService) DeleteBook(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	referenced, err := s.repo.ReferencedByOrders(id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrBookReferenced
	}
	return s.repo.Delete(id)
}
