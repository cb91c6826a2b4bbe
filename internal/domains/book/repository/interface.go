package repository

import (
	"context"

	"book-catalog-api/internal/domains/book/model"
)

// RepositoryInterface - Định nghĩa data access methods
// Mọi method chỉ nhìn thấy book chưa bị soft delete
type RepositoryInterface interface {
	// Listing
	ListBooks(ctx context.Context, offset, limit int) ([]model.Book, error)
	CountBooks(ctx context.Context) (int, error)
	ListRankedTitles(ctx context.Context, currentYear, offset, limit int) ([]string, error)
	ListAllBooks(ctx context.Context) ([]model.Book, error)

	// Detail
	GetBookByID(ctx context.Context, id int64) (*model.Book, error)
	IncrementViewCount(ctx context.Context, id int64) (*model.Book, error)

	// Title uniqueness (pre-check, unique index là chốt chặn cuối)
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	FindExistingTitles(ctx context.Context, titles []string) ([]string, error)

	// Writes
	CreateBook(ctx context.Context, book *model.Book) error
	CreateBooks(ctx context.Context, books []*model.Book) error
	UpdateBook(ctx context.Context, book *model.Book) error
	SoftDeleteBook(ctx context.Context, id int64) error
	SoftDeleteBooks(ctx context.Context, ids []int64) (int64, error)
}
