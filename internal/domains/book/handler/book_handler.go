package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"book-catalog-api/internal/domains/book/model"
	service "book-catalog-api/internal/domains/book/service"
	"book-catalog-api/internal/shared/response"
	"book-catalog-api/internal/shared/utils"
	"book-catalog-api/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler - HTTP Handler (single file)
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListBooks - GET /v1/books?pageNumber=&pageSize=
func (h *Handler) ListBooks(c *gin.Context) {
	page := model.NewPageRequest(
		utils.QueryInt(c, "pageNumber", model.DefaultPageNumber),
		utils.QueryInt(c, "pageSize", model.DefaultPageSize),
	)

	data, err := h.service.ListBooks(c.Request.Context(), page)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Books retrieved successfully", data)
}

// GetRanking - GET /v1/books/ranking?pageNumber=&pageSize=
func (h *Handler) GetRanking(c *gin.Context) {
	page := model.NewPageRequest(
		utils.QueryInt(c, "pageNumber", model.DefaultPageNumber),
		utils.QueryInt(c, "pageSize", model.DefaultPageSize),
	)

	data, err := h.service.GetRanking(c.Request.Context(), page)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Ranking retrieved successfully", data)
}

// GetBookDetail - GET /v1/books/:id
func (h *Handler) GetBookDetail(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", book)
}

// ExportBooks - GET /v1/books/export (admin)
func (h *Handler) ExportBooks(c *gin.Context) {
	f, count, err := h.service.ExportBooksToExcel(c.Request.Context())
	if err != nil {
		model.HandleBookError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("books_%d.xlsx", count)
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to write excel export", err)
	}
}

// CreateBook - POST /v1/books/single (admin)
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", book)
}

// CreateBooksBulk - POST /v1/books/bulk (admin), body là JSON array
func (h *Handler) CreateBooksBulk(c *gin.Context) {
	var reqs []model.CreateBookRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	books, err := h.service.CreateBooksBulk(c.Request.Context(), reqs)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, fmt.Sprintf("%d books created successfully", len(books)), books)
}

// UpdateBook - PUT /v1/books/:id (admin)
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	if err := h.service.UpdateBook(c.Request.Context(), id, req); err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.NoContent(c)
}

// DeleteBook - DELETE /v1/books/:id (admin, soft delete)
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.NoContent(c)
}

// DeleteBooksBulk - DELETE /v1/books/bulk (admin), body là JSON array các id
func (h *Handler) DeleteBooksBulk(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	if _, err := h.service.DeleteBooksBulk(c.Request.Context(), ids); err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.NoContent(c)
}

func bookID(c *gin.Context) (int64, bool) {
	id, err := utils.ParamInt64(c, "id")
	if err != nil {
		model.HandleBookError(c, model.ErrInvalidBookID)
		return 0, false
	}
	return id, true
}
