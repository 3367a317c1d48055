package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AshivPrajapati/Online-Bookstore/internal/handlers"
	"github.com/AshivPrajapati/Online-Bookstore/internal/middleware"
	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/repositories"
	"github.com/AshivPrajapati/Online-Bookstore/internal/services"
)

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testEnv struct {
	app         *fiber.App
	userRepo    repositories.UserRepository
	authService *services.AuthService
}

// setupApp wires a Fiber app against an in-memory SQLite database, mirroring
// the production wiring minus the message broker.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Book{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	bookRepo := repositories.NewGORMBookRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret", 0)
	bookService := services.NewBookService(bookRepo)
	categoryService := services.NewCategoryService(categoryRepo, bookRepo)
	orderService := services.NewOrderService(orderRepo, bookRepo, nil)

	app := fiber.New()
	auth := middleware.AuthRequired(authService)
	admin := middleware.AdminRequired()

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewBookHandler(bookService).RegisterRoutes(apiV1, auth, admin)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(apiV1, auth, admin)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, auth, admin)

	return &testEnv{app: app, userRepo: userRepo, authService: authService}
}

// request performs an HTTP request against the test app, JSON-encoding the
// body when present and attaching the bearer token when non-empty.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// adminToken seeds an admin account directly and returns a session token
// for it. Registration deliberately cannot create admins.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hashed),
		FirstName:    "Store",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
	}
	assert.NoError(t, e.userRepo.Create(admin))

	token, err := e.authService.GenerateToken(admin)
	assert.NoError(t, err)
	return token
}

// customerToken registers a customer through the service and returns a
// session token for it.
func (e *testEnv) customerToken(t *testing.T, username, email string) string {
	t.Helper()

	token, _, err := e.authService.Register(services.RegisterInput{
		Username:  username,
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "Customer",
	})
	assert.NoError(t, err)
	return token
}

type authResponse struct {
	Token string                `json:"token"`
	User  handlers.UserResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	registerBody := map[string]string{
		"username":   "jane",
		"email":      "jane@example.com",
		"password":   "password123",
		"first_name": "Jane",
		"last_name":  "Doe",
	}
	resp := env.request(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registered authResponse
	decodeBody(t, resp, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "jane", registered.User.Username)
	assert.Equal(t, "customer", registered.User.UserType)
	assert.Equal(t, "Jane Doe", registered.User.FullName)

	// Registering the same email again conflicts.
	resp = env.request(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Missing required fields fail validation.
	resp = env.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "incomplete",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loggedIn authResponse
	decodeBody(t, resp, &loggedIn)
	assert.NotEmpty(t, loggedIn.Token)

	// Wrong password and unknown email both get the same 401.
	resp = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var failed messageResponse
	decodeBody(t, resp, &failed)
	assert.Equal(t, "invalid email or password", failed.Message)

	resp = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthorizationBoundaries(t *testing.T) {
	env := setupApp(t)
	customer := env.customerToken(t, "jane", "jane@example.com")

	// Public catalog reads need no token.
	resp := env.request(t, http.MethodGet, "/api/v1/books/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Catalog writes need a token.
	resp = env.request(t, http.MethodPost, "/api/v1/books/", "", map[string]interface{}{
		"title": "Dune", "author": "Frank Herbert", "price": "10.00",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A customer token is not enough for catalog writes.
	resp = env.request(t, http.MethodPost, "/api/v1/books/", customer, map[string]interface{}{
		"title": "Dune", "author": "Frank Herbert", "price": "10.00",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var forbidden messageResponse
	decodeBody(t, resp, &forbidden)
	assert.Equal(t, "Admin access required", forbidden.Message)

	// Orders are entirely behind authentication.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Garbage tokens are rejected.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCategoryCRUD(t *testing.T) {
	env := setupApp(t)
	admin := env.adminToken(t)

	resp := env.request(t, http.MethodPost, "/api/v1/categories/", admin, map[string]string{
		"category_name": "Fiction",
		"description":   "Made-up stories",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created services.CategoryDetail
	decodeBody(t, resp, &created)
	assert.Equal(t, "Fiction", created.Name)
	assert.Equal(t, int64(0), created.BookCount)

	// Partial patch: empty name untouched, description cleared.
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/categories/%d", created.ID), admin, map[string]string{
		"category_name": "",
		"description":   "",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var patched services.CategoryDetail
	decodeBody(t, resp, &patched)
	assert.Equal(t, "Fiction", patched.Name)
	assert.Equal(t, "", patched.Description)

	resp = env.request(t, http.MethodGet, "/api/v1/categories/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []services.CategoryDetail
	decodeBody(t, resp, &listed)
	assert.Len(t, listed, 1)

	resp = env.request(t, http.MethodGet, "/api/v1/categories/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// A category holding books cannot be deleted.
	resp = env.request(t, http.MethodPost, "/api/v1/books/", admin, map[string]interface{}{
		"title":          "Dune",
		"author":         "Frank Herbert",
		"price":          "10.00",
		"stock_quantity": 5,
		"category_id":    created.ID,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var book handlers.BookResponse
	decodeBody(t, resp, &book)
	assert.Equal(t, "Fiction", book.CategoryName)

	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", created.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict messageResponse
	decodeBody(t, resp, &conflict)
	assert.Equal(t, "cannot delete category that contains books", conflict.Message)

	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", book.BookID), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", created.ID), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestBookCatalog(t *testing.T) {
	env := setupApp(t)
	admin := env.adminToken(t)

	resp := env.request(t, http.MethodPost, "/api/v1/categories/", admin, map[string]string{
		"category_name": "Science Fiction",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var category services.CategoryDetail
	decodeBody(t, resp, &category)

	createBook := func(title, author, price string, categoryID *uint) handlers.BookResponse {
		body := map[string]interface{}{
			"title":          title,
			"author":         author,
			"price":          price,
			"stock_quantity": 3,
		}
		if categoryID != nil {
			body["category_id"] = *categoryID
		}
		resp := env.request(t, http.MethodPost, "/api/v1/books/", admin, body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var book handlers.BookResponse
		decodeBody(t, resp, &book)
		return book
	}

	dune := createBook("Dune", "Frank Herbert", "10.50", &category.ID)
	createBook("The Hobbit", "J.R.R. Tolkien", "8.00", nil)

	// Zero or negative prices are rejected.
	resp = env.request(t, http.MethodPost, "/api/v1/books/", admin, map[string]interface{}{
		"title": "Freebie", "author": "Nobody", "price": "0",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var badPrice messageResponse
	decodeBody(t, resp, &badPrice)
	assert.Equal(t, "Price must be greater than zero", badPrice.Message)

	// Case-insensitive search over title and author.
	resp = env.request(t, http.MethodGet, "/api/v1/books/?search=dune", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var found []handlers.BookResponse
	decodeBody(t, resp, &found)
	assert.Len(t, found, 1)
	assert.Equal(t, "Dune", found[0].Title)

	resp = env.request(t, http.MethodGet, "/api/v1/books/?search=tolkien", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &found)
	assert.Len(t, found, 1)
	assert.Equal(t, "The Hobbit", found[0].Title)

	// Category filter.
	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/books/?categoryId=%d", category.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &found)
	assert.Len(t, found, 1)
	assert.Equal(t, dune.BookID, found[0].BookID)

	resp = env.request(t, http.MethodGet, "/api/v1/books/?categoryId=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Partial patch leaves absent and empty-string title fields untouched.
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/books/%d", dune.BookID), admin, map[string]interface{}{
		"title":          "",
		"stock_quantity": 7,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var patched handlers.BookResponse
	decodeBody(t, resp, &patched)
	assert.Equal(t, "Dune", patched.Title)
	assert.Equal(t, 7, patched.StockQuantity)

	resp = env.request(t, http.MethodGet, "/api/v1/books/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var missing messageResponse
	decodeBody(t, resp, &missing)
	assert.Equal(t, "Book not found", missing.Message)
}

func TestOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	admin := env.adminToken(t)
	alice := env.customerToken(t, "alice", "alice@example.com")
	bob := env.customerToken(t, "bob", "bob@example.com")

	resp := env.request(t, http.MethodPost, "/api/v1/books/", admin, map[string]interface{}{
		"title":          "Dune",
		"author":         "Frank Herbert",
		"price":          "10.00",
		"stock_quantity": 5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var book handlers.BookResponse
	decodeBody(t, resp, &book)

	bookStock := func() int {
		resp := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.BookID), "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var current handlers.BookResponse
		decodeBody(t, resp, &current)
		return current.StockQuantity
	}

	// Placing an order decrements stock and snapshots prices.
	resp = env.request(t, http.MethodPost, "/api/v1/orders/", alice, map[string]interface{}{
		"shipping_address": "1 Main St",
		"payment_method":   "credit_card",
		"items":            []map[string]interface{}{{"book_id": book.BookID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order handlers.OrderResponse
	decodeBody(t, resp, &order)
	assert.Equal(t, "pending", order.OrderStatus)
	assert.Equal(t, "pending", order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("20")))
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Dune", order.Items[0].BookTitle)
	assert.Equal(t, 3, bookStock())

	// Requesting more than the remaining stock fails without side effects.
	resp = env.request(t, http.MethodPost, "/api/v1/orders/", alice, map[string]interface{}{
		"shipping_address": "1 Main St",
		"items":            []map[string]interface{}{{"book_id": book.BookID, "quantity": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var tooMany messageResponse
	decodeBody(t, resp, &tooMany)
	assert.Equal(t, "insufficient stock for book 'Dune'. Available: 3, Requested: 10", tooMany.Message)
	assert.Equal(t, 3, bookStock())

	// Unknown books fail the whole order.
	resp = env.request(t, http.MethodPost, "/api/v1/orders/", alice, map[string]interface{}{
		"shipping_address": "1 Main St",
		"items":            []map[string]interface{}{{"book_id": 9999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// An empty item list fails validation.
	resp = env.request(t, http.MethodPost, "/api/v1/orders/", alice, map[string]interface{}{
		"shipping_address": "1 Main St",
		"items":            []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Customers only see their own orders.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/my-orders", alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []handlers.OrderResponse
	decodeBody(t, resp, &mine)
	assert.Len(t, mine, 1)

	resp = env.request(t, http.MethodGet, "/api/v1/orders/", bob, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var bobs []handlers.OrderResponse
	decodeBody(t, resp, &bobs)
	assert.Len(t, bobs, 0)

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.OrderID), bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Admins see everything.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var all []handlers.OrderResponse
	decodeBody(t, resp, &all)
	assert.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].Username)

	// Status updates are admin only and case-insensitive.
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", order.OrderID), alice, map[string]string{
		"order_status": "confirmed",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", order.OrderID), admin, map[string]string{
		"order_status": "teleported",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", order.OrderID), admin, map[string]string{
		"order_status":   "CONFIRMED",
		"payment_status": "Paid",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.OrderID), alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var confirmed handlers.OrderResponse
	decodeBody(t, resp, &confirmed)
	assert.Equal(t, "confirmed", confirmed.OrderStatus)
	assert.Equal(t, "paid", confirmed.PaymentStatus)

	// A book referenced by an order cannot be deleted.
	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", book.BookID), admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var referenced messageResponse
	decodeBody(t, resp, &referenced)
	assert.Equal(t, "cannot delete book that appears in existing orders", referenced.Message)

	// Cancelling a confirmed order restores stock.
	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", order.OrderID), alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 5, bookStock())

	// Cancelling twice is rejected.
	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", order.OrderID), alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderDeletion(t *testing.T) {
	env := setupApp(t)
	admin := env.adminToken(t)
	alice := env.customerToken(t, "alice", "alice@example.com")

	resp := env.request(t, http.MethodPost, "/api/v1/books/", admin, map[string]interface{}{
		"title":          "Neuromancer",
		"author":         "William Gibson",
		"price":          "7.25",
		"stock_quantity": 4,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var book handlers.BookResponse
	decodeBody(t, resp, &book)

	placeOrder := func() handlers.OrderResponse {
		resp := env.request(t, http.MethodPost, "/api/v1/orders/", alice, map[string]interface{}{
			"shipping_address": "1 Main St",
			"items":            []map[string]interface{}{{"book_id": book.BookID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var order handlers.OrderResponse
		decodeBody(t, resp, &order)
		return order
	}

	// Deletion is admin only.
	pending := placeOrder()
	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", pending.OrderID), alice, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Deleting a pending order restores stock and removes it.
	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", pending.OrderID), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", pending.OrderID), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.BookID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var current handlers.BookResponse
	decodeBody(t, resp, &current)
	assert.Equal(t, 4, current.StockQuantity)

	// Orders past pending cannot be deleted.
	shipped := placeOrder()
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", shipped.OrderID), admin, map[string]string{
		"order_status": "shipped",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", shipped.OrderID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var refused messageResponse
	decodeBody(t, resp, &refused)
	assert.Equal(t, "only pending orders can be deleted", refused.Message)
}
