package handlers

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/repositories"
	"github.com/AshivPrajapati/Online-Bookstore/internal/services"
)

// BookHandler handles HTTP requests for the book catalog.
type BookHandler struct {
	service  *services.BookService
	validate *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService) *BookHandler {
	return &BookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the book routes. Reads are public; writes
// require an authenticated admin.
func (h *BookHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleGetBooks)
	bookRoutes.Get("/:id", h.HandleGetBook)
	bookRoutes.Post("/", auth, admin, h.HandleCreateBook)
	bookRoutes.Put("/:id", auth, admin, h.HandleUpdateBook)
	bookRoutes.Delete("/:id", auth, admin, h.HandleDeleteBook)
}

// CreateBookRequest represents the request body for book creation.
type CreateBookRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Author          string          `json:"author" validate:"required,max=100"`
	ISBN            string          `json:"isbn" validate:"omitempty,max=20"`
	CategoryID      *uint           `json:"category_id"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity" validate:"gte=0"`
	ImageURL        string          `json:"image_url" validate:"omitempty,max=500"`
	PublicationDate *time.Time      `json:"publication_date"`
	Publisher       string          `json:"publisher" validate:"omitempty,max=100"`
}

// UpdateBookRequest is a partial patch: absent fields stay untouched.
type UpdateBookRequest struct {
	Title           *string          `json:"title"`
	Author          *string          `json:"author"`
	ISBN            *string          `json:"isbn"`
	CategoryID      *uint            `json:"category_id"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	StockQuantity   *int             `json:"stock_quantity"`
	ImageURL        *string          `json:"image_url"`
	PublicationDate *time.Time       `json:"publication_date"`
	Publisher       *string          `json:"publisher"`
}

// BookResponse denormalizes the category name for display.
type BookResponse struct {
	BookID          uint            `json:"book_id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn,omitempty"`
	CategoryID      *uint           `json:"category_id,omitempty"`
	CategoryName    string          `json:"category_name,omitempty"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity"`
	ImageURL        string          `json:"image_url,omitempty"`
	PublicationDate *time.Time      `json:"publication_date,omitempty"`
	Publisher       string          `json:"publisher,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toBookResponse(book *models.Book) BookResponse {
	resp := BookResponse{
		BookID:          book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		CategoryID:      book.CategoryID,
		Description:     book.Description,
		Price:           book.Price,
		StockQuantity:   book.StockQuantity,
		ImageURL:        book.ImageURL,
		PublicationDate: book.PublicationDate,
		Publisher:       book.Publisher,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
	if book.Category != nil {
		resp.CategoryName = book.Category.Name
	}
	return resp
}

// HandleGetBooks lists books, optionally filtered by category and a
// case-insensitive search over title or author.
func (h *BookHandler) HandleGetBooks(c *fiber.Ctx) error {
	query := repositories.BookQuery{
		Search: c.Query("search"),
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid categoryId parameter",
			})
		}
		categoryID := uint(id)
		query.CategoryID = &categoryID
	}

	books, err := h.service.GetBooks(query)
	if err != nil {
		return respondServiceError(c, err, "Book not found")
	}

	resp := make([]BookResponse, 0, len(books))
	for i := range books {
		resp = append(resp, toBookResponse(&books[i]))
	}
	return c.JSON(resp)
}

// HandleGetBook retrieves a single book by its ID.
func (h *BookHandler) HandleGetBook(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid book id",
		})
	}

	book, err := h.service.GetBookByID(id)
	if err != nil {
		return respondServiceError(c, err, "Book not found")
	}
	return c.JSON(toBookResponse(book))
}

// HandleCreateBook creates a new book. Admin only.
func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}
	if req.Price.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Price must be greater than zero",
		})
	}

	book, err := h.service.CreateBook(&models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		ImageURL:        req.ImageURL,
		PublicationDate: req.PublicationDate,
		Publisher:       req.Publisher,
	})
	if err != nil {
		return respondServiceError(c, err, "Book not found")
	}
	return c.Status(fiber.StatusCreated).JSON(toBookResponse(book))
}

// HandleUpdateBook applies a partial patch to an existing book. Admin only.
func (h *BookHandler) HandleUpdateBook(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid book id",
		})
	}

	var req UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.Price != nil && req.Price.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Price must be greater than zero",
		})
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Stock quantity cannot be negative",
		})
	}

	book, err := h.service.UpdateBook(id, services.BookPatch{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		ImageURL:        req.ImageURL,
		PublicationDate: req.PublicationDate,
		Publisher:       req.Publisher,
	})
	if err != nil {
		return respondServiceError(c, err, "Book not found")
	}
	return c.JSON(toBookResponse(book))
}

// HandleDeleteBook deletes a book unless orders reference it. Admin only.
func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid book id",
		})
	}

	if err := h.service.DeleteBook(id); err != nil {
		return respondServiceError(c, err, "Book not found")
	}
	return c.JSON(fiber.Map{
		"message": "Book deleted successfully",
	})
}
