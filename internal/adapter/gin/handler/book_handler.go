package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lending-service/internal/usecase/catalog"
)

// BookHandler serves catalog browsing and administration.
type BookHandler struct {
	uc  *catalog.Usecase
	log *zap.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(uc *catalog.Usecase, log *zap.Logger) *BookHandler {
	return &BookHandler{uc: uc, log: log}
}

// bookPayload is the request body shared by create and update. The
// usecase owns validation; the body only has to be well-formed JSON.
type bookPayload struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	ImageURL  string `json:"imageUrl"`
	Available *bool  `json:"available"`
}

// ListBooks handles GET /v1/books.
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.uc.ListBooks(c.Request.Context(), catalog.ListBooksRequest{
		Category: c.Query("category"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook handles GET /v1/books/:id.
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	book, err := h.uc.GetBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// ListCategories handles GET /v1/books/categories.
func (h *BookHandler) ListCategories(c *gin.Context) {
	categories, err := h.uc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateBook handles POST /v1/books (admin).
func (h *BookHandler) CreateBook(c *gin.Context) {
	var body bookPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed_body", Message: err.Error()})
		return
	}

	book, err := h.uc.CreateBook(c.Request.Context(), catalog.CreateBookRequest{
		Title:    body.Title,
		Author:   body.Author,
		Category: body.Category,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// UpdateBook handles PUT /v1/books/:id (admin).
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body bookPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed_body", Message: err.Error()})
		return
	}

	book, err := h.uc.UpdateBook(c.Request.Context(), catalog.UpdateBookRequest{
		ID:        id,
		Title:     body.Title,
		Author:    body.Author,
		Category:  body.Category,
		ImageURL:  body.ImageURL,
		Available: body.Available,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /v1/books/:id?confirm=true (admin). The
// confirm parameter is the explicit confirmation gate.
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.uc.DeleteBook(c.Request.Context(), catalog.DeleteBookRequest{
		ID:        id,
		Confirmed: c.Query("confirm") == "true",
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, writing the error response
// itself on failure.
func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "id must be a positive number",
		})
		return 0, false
	}
	return id, true
}
