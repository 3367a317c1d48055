package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AshivPrajapati/Online-Bookstore/internal/services"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the category routes. Reads are public; writes
// require an authenticated admin.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategory)
	categoryRoutes.Post("/", auth, admin, h.HandleCreateCategory)
	categoryRoutes.Put("/:id", auth, admin, h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", auth, admin, h.HandleDeleteCategory)
}

// CreateCategoryRequest represents the request body for category creation.
type CreateCategoryRequest struct {
	Name        string `json:"category_name" validate:"required,max=100"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is a partial patch: absent fields stay untouched.
type UpdateCategoryRequest struct {
	Name        *string `json:"category_name"`
	Description *string `json:"description"`
}

// HandleGetCategories lists all categories with their book counts.
func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories()
	if err != nil {
		return respondServiceError(c, err, "Category not found")
	}
	return c.JSON(categories)
}

// HandleGetCategory retrieves a single category by its ID.
func (h *CategoryHandler) HandleGetCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid category id",
		})
	}

	category, err := h.service.GetCategory(id)
	if err != nil {
		return respondServiceError(c, err, "Category not found")
	}
	return c.JSON(category)
}

// HandleCreateCategory creates a new category. Admin only.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	category, err := h.service.CreateCategory(req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err, "Category not found")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory applies a partial patch to a category. Admin only.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid category id",
		})
	}

	var req UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	category, err := h.service.UpdateCategory(id, services.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err, "Category not found")
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes a category unless books reference it.
// Admin only.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid category id",
		})
	}

	if err := h.service.DeleteCategory(id); err != nil {
		return respondServiceError(c, err, "Category not found")
	}
	return c.JSON(fiber.Map{
		"message": "Category deleted successfully",
	})
}
