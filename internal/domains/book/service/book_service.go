package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog-api/internal/domains/book/model"
	"book-catalog-api/internal/domains/book/repository"
	"book-catalog-api/pkg/cache"
	"book-catalog-api/pkg/logger"
)

const defaultCacheTTL = time.Minute

// Option cấu hình BookService
type Option func(*BookService)

// WithClock thay nguồn thời gian (năm hiện tại dùng cho validate và ranking)
func WithClock(now func() time.Time) Option {
	return func(s *BookService) {
		s.now = now
	}
}

// WithCacheTTL đặt TTL cho các page được cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *BookService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService - Constructor with DI; cache có thể nil
func NewService(repo repository.RepositoryInterface, c cache.Cache, opts ...Option) ServiceInterface {
	s := &BookService{
		repo:     repo,
		cache:    c,
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================
// READS
// ============================================

// ListBooks - page của book chưa xóa, theo title tăng dần
func (s *BookService) ListBooks(ctx context.Context, page model.PageRequest) (*model.PagedResponse[model.BookResponse], error) {
	page = model.NewPageRequest(page.PageNumber, page.PageSize)

	var result model.PagedResponse[model.BookResponse]
	cacheKey := s.pageCacheKey(ctx, "books:list", page)
	if s.cacheGet(ctx, cacheKey, &result) {
		return &result, nil
	}

	books, err := s.repo.ListBooks(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	total, err := s.repo.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	result = model.PagedResponse[model.BookResponse]{
		PageNumber:   page.PageNumber,
		PageSize:     page.PageSize,
		TotalRecords: total,
		Data:         model.ToBookResponses(books, s.now()),
	}
	s.cacheSet(ctx, cacheKey, result)

	return &result, nil
}

// GetBook - mỗi lần xem chi tiết là một lần ghi view_count
func (s *BookService) GetBook(ctx context.Context, id int64) (*model.BookResponse, error) {
	b, err := s.repo.IncrementViewCount(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	resp := model.ToBookResponse(*b, s.now())
	return &resp, nil
}

// GetRanking - chỉ trả về title, sắp xếp theo viewCount + age*2 giảm dần
func (s *BookService) GetRanking(ctx context.Context, page model.PageRequest) (*model.PagedResponse[string], error) {
	page = model.NewPageRequest(page.PageNumber, page.PageSize)
	currentYear := s.now().Year()

	var result model.PagedResponse[string]
	cacheKey := fmt.Sprintf("%s:y%d", s.pageCacheKey(ctx, "books:ranking", page), currentYear)
	if s.cacheGet(ctx, cacheKey, &result) {
		return &result, nil
	}

	titles, err := s.repo.ListRankedTitles(ctx, currentYear, page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	total, err := s.repo.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	if titles == nil {
		titles = []string{}
	}
	result = model.PagedResponse[string]{
		PageNumber:   page.PageNumber,
		PageSize:     page.PageSize,
		TotalRecords: total,
		Data:         titles,
	}
	s.cacheSet(ctx, cacheKey, result)

	return &result, nil
}

// ============================================
// WRITES
// ============================================

// CreateBook - title trùng với book chưa xóa -> ErrTitleAlreadyExists
func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error) {
	b := req.ToBook()

	exists, err := s.repo.TitleExists(ctx, b.Title, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrTitleAlreadyExists
	}

	now := s.now()
	if err := b.Validate(now); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBook(ctx, &b); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logger.Info("book created", map[string]interface{}{"book_id": b.ID})

	resp := model.ToBookResponse(b, now)
	return &resp, nil
}

// CreateBooksBulk - all-or-nothing:
//  1. mọi title đã tồn tại được báo cùng lúc (DuplicateTitlesError)
//  2. item không hợp lệ đầu tiên dừng cả batch (BulkItemError)
//  3. insert trong một transaction
//
// Batch rỗng không phải lỗi: trả về danh sách rỗng.
//
// Title trùng nhau bên trong batch không được kiểm tra trước; unique index sẽ từ chối khi insert.
func (s *BookService) CreateBooksBulk(ctx context.Context, reqs []model.CreateBookRequest) ([]model.BookResponse, error) {
	if len(reqs) == 0 {
		return []model.BookResponse{}, nil
	}

	books := make([]*model.Book, len(reqs))
	titles := make([]string, 0, len(reqs))
	for i, req := range reqs {
		b := req.ToBook()
		books[i] = &b
		if b.Title != "" {
			titles = append(titles, b.Title)
		}
	}

	existing, err := s.repo.FindExistingTitles(ctx, titles)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, &model.DuplicateTitlesError{Titles: existing}
	}

	now := s.now()
	for i, b := range books {
		if err := b.Validate(now); err != nil {
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				return nil, err
			}
			return nil, &model.BulkItemError{Index: i, Book: reqs[i], Errors: verrs}
		}
	}

	if err := s.repo.CreateBooks(ctx, books); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logger.Info("books created in bulk", map[string]interface{}{"count": len(books)})

	out := make([]model.BookResponse, len(books))
	for i, b := range books {
		out[i] = model.ToBookResponse(*b, now)
	}
	return out, nil
}

// UpdateBook - partial update, validate lại toàn bộ record trước khi ghi
func (s *BookService) UpdateBook(ctx context.Context, id int64, req model.UpdateBookRequest) error {
	b, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return err
	}

	if title, changed := req.NewTitle(b.Title); changed {
		exists, err := s.repo.TitleExists(ctx, title, id)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrTitleAlreadyExists
		}
	}

	req.ApplyTo(b)
	if err := b.Validate(s.now()); err != nil {
		return err
	}

	if err := s.repo.UpdateBook(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteBook - soft delete; không tồn tại hoặc đã xóa -> ErrBookNotFound
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.SoftDeleteBook(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	logger.Info("book soft deleted", map[string]interface{}{"book_id": id})
	return nil
}

// DeleteBooksBulk - ErrNoBooksMatched nếu không id nào khớp (kể cả danh sách rỗng); id không khớp bị bỏ qua
func (s *BookService) DeleteBooksBulk(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, model.ErrNoBooksMatched
	}

	n, err := s.repo.SoftDeleteBooks(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, model.ErrNoBooksMatched
	}
	s.invalidate(ctx)

	logger.Info("books soft deleted in bulk", map[string]interface{}{
		"requested": len(ids),
		"deleted":   n,
	})
	return n, nil
}
