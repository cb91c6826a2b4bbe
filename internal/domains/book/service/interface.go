package service

import (
	"context"

	"github.com/xuri/excelize/v2"

	"book-catalog-api/internal/domains/book/model"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	ListBooks(ctx context.Context, page model.PageRequest) (*model.PagedResponse[model.BookResponse], error)
	GetBook(ctx context.Context, id int64) (*model.BookResponse, error)
	GetRanking(ctx context.Context, page model.PageRequest) (*model.PagedResponse[string], error)

	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error)
	CreateBooksBulk(ctx context.Context, reqs []model.CreateBookRequest) ([]model.BookResponse, error)
	UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) error
	DeleteBook(ctx context.Context, id int64) error
	DeleteBooksBulk(ctx context.Context, ids []int64) (int64, error)

	ExportBooksToExcel(ctx context.Context) (*excelize.File, int, error)
}
