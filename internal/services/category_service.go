package services

import (
	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/repositories"
)

// CategoryService handles business logic related to categories, including
// the referential guard against deleting a category that still has books.
type CategoryService struct {
	repo     repositories.CategoryRepository
	bookRepo repositories.BookRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, bookRepo repositories.BookRepository) *CategoryService {
	return &CategoryService{
		repo:     repo,
		bookRepo: bookRepo,
	}
}

// CategoryDetail is a category together with its current book count.
type CategoryDetail struct {
	models.Category
	BookCount int64 `json:"book_count"`
}

// CategoryPatch is a partial update; nil fields are untouched and an empty
// name is treated as untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
}

func (s *CategoryService) detail(category *models.Category) (*CategoryDetail, error) {
	count, err := s.bookRepo.CountByCategory(category.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: *category, BookCount: count}, nil
}

// GetCategories retrieves all categories with their book counts.
func (s *CategoryService) GetCategories() ([]CategoryDetail, error) {
	categories, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	details := make([]CategoryDetail, 0, len(categories))
	for i := range categories {
		d, err := s.detail(&categories[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// GetCategory retrieves a single category with its book count.
func (s *CategoryService) GetCategory(id uint) (*CategoryDetail, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.detail(category)
}

// CreateCategory creates a new category.
func (s *CategoryService) CreateCategory(name, description string) (*CategoryDetail, error) {
	category := &models.Category{
		Name:        name,
		Description: description,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: *category, BookCount: 0}, nil
}

// UpdateCategory applies a partial patch to an existing category.
func (s *CategoryService) UpdateCategory(id uint, patch CategoryPatch) (*CategoryDetail, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name != "" {
		category.Name = *patch.Name
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return s.detail(category)
}

// DeleteCategory removes a category unless books still reference it.
func (s *CategoryService) DeleteCategory(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	count, err := s.bookRepo.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}
	return s.repo.Delete(id)
}
