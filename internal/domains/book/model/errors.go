package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog-api/internal/shared/response"
	"book-catalog-api/pkg/logger"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrTitleAlreadyExists = errors.New("a book with this title already exists")
	ErrNoBooksMatched     = errors.New("no matching books found to delete")
	ErrInvalidBookID      = errors.New("invalid book id")
)

// DuplicateTitlesError liệt kê tất cả title trong batch đã tồn tại
type DuplicateTitlesError struct {
	Titles []string
}

func (e *DuplicateTitlesError) Error() string {
	return "the following title(s) already exist: " + strings.Join(e.Titles, ", ")
}

func (e *DuplicateTitlesError) Is(target error) bool {
	return target == ErrTitleAlreadyExists
}

// BulkItemError là lỗi validate của item đầu tiên không hợp lệ trong batch
type BulkItemError struct {
	Index  int
	Book   CreateBookRequest
	Errors validation.Errors
}

func (e *BulkItemError) Error() string {
	return fmt.Sprintf("book at index %d is invalid: %v", e.Index, e.Errors)
}

func (e *BulkItemError) Unwrap() error {
	return e.Errors
}

var bookErrorMap = map[error]struct {
	Status  int
	Message string
}{
	ErrBookNotFound:       {Status: http.StatusNotFound, Message: "Book not found"},
	ErrNoBooksMatched:     {Status: http.StatusNotFound, Message: "No matching books found to delete"},
	ErrTitleAlreadyExists: {Status: http.StatusConflict, Message: "A book with this title already exists"},
	ErrInvalidBookID:      {Status: http.StatusBadRequest, Message: "Invalid book id"},
}

// HandleBookError ghi error response phù hợp; lỗi không xác định -> 500 và log
func HandleBookError(c *gin.Context, err error) {
	var (
		dupErr  *DuplicateTitlesError
		itemErr *BulkItemError
		verrs   validation.Errors
	)

	switch {
	case errors.As(err, &dupErr):
		response.Conflict(c, dupErr.Error(), gin.H{"titles": dupErr.Titles})
		return
	case errors.As(err, &itemErr):
		response.BadRequest(c, "Validation failed", gin.H{
			"index":  itemErr.Index,
			"book":   itemErr.Book,
			"errors": itemErr.Errors,
		})
		return
	case errors.As(err, &verrs):
		response.BadRequest(c, "Validation failed", verrs)
		return
	}

	for target, cfg := range bookErrorMap {
		if errors.Is(err, target) {
			response.Error(c, cfg.Status, cfg.Message, nil)
			return
		}
	}

	logger.ErrorFields("book request failed", err, map[string]interface{}{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	response.InternalServerError(c)
}
