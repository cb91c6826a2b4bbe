package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"book-catalog-api/internal/domains/book/model"
	"book-catalog-api/pkg/database"
)

// titleUniqueIndex là partial unique index: title duy nhất trong các book chưa xóa
const titleUniqueIndex = "ux_books_title_active"

const bookColumns = `id, title, publication_year, author_name, view_count, is_deleted, created_at, updated_at`

// postgresRepository - Raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ============================================
// LIST + RANKING
// ============================================

// ListBooks - sắp xếp theo title tăng dần
func (r *postgresRepository) ListBooks(ctx context.Context, offset, limit int) ([]model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE is_deleted = FALSE
		ORDER BY title ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	return r.queryBooks(ctx, query, limit, offset)
}

// CountBooks - tổng số book chưa xóa
func (r *postgresRepository) CountBooks(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE is_deleted = FALSE`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

// ListRankedTitles - score = view_count + (currentYear - publication_year) * 2
func (r *postgresRepository) ListRankedTitles(ctx context.Context, currentYear, offset, limit int) ([]string, error) {
	query := `
		SELECT title
		FROM books
		WHERE is_deleted = FALSE
		ORDER BY view_count + ($1::int - publication_year) * 2 DESC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, currentYear, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ranking query failed: %w", err)
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect ranking rows: %w", err)
	}
	return titles, nil
}

// ListAllBooks - dùng cho export
func (r *postgresRepository) ListAllBooks(ctx context.Context) ([]model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE is_deleted = FALSE
		ORDER BY title ASC, id ASC
	`
	return r.queryBooks(ctx, query)
}

// ============================================
// DETAIL
// ============================================

func (r *postgresRepository) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 AND is_deleted = FALSE`
	return r.queryBook(ctx, query, id)
}

// IncrementViewCount - tăng view_count atomically và trả về book sau khi tăng
func (r *postgresRepository) IncrementViewCount(ctx context.Context, id int64) (*model.Book, error) {
	query := `
		UPDATE books
		SET view_count = view_count + 1
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + bookColumns
	return r.queryBook(ctx, query, id)
}

// ============================================
// TITLE UNIQUENESS
// ============================================

// TitleExists - excludeID = 0 nghĩa là không loại trừ book nào
func (r *postgresRepository) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM books
			WHERE title = $1 AND is_deleted = FALSE AND id <> $2
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, title, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check title exists: %w", err)
	}
	return exists, nil
}

// FindExistingTitles - các title trong danh sách đã tồn tại
func (r *postgresRepository) FindExistingTitles(ctx context.Context, titles []string) ([]string, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT title FROM books
		WHERE title = ANY($1) AND is_deleted = FALSE
		ORDER BY title
	`
	rows, err := r.pool.Query(ctx, query, titles)
	if err != nil {
		return nil, fmt.Errorf("find existing titles: %w", err)
	}

	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect existing titles: %w", err)
	}
	return existing, nil
}

// ============================================
// WRITES
// ============================================

const insertBookQuery = `
	INSERT INTO books (title, publication_year, author_name)
	VALUES ($1, $2, $3)
	RETURNING ` + bookColumns

func (r *postgresRepository) CreateBook(ctx context.Context, book *model.Book) error {
	return insertBook(ctx, r.pool, book)
}

// CreateBooks - insert cả batch trong một transaction, lỗi ở bất kỳ row nào thì rollback toàn bộ
func (r *postgresRepository) CreateBooks(ctx context.Context, books []*model.Book) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, b := range books {
			if err := insertBook(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertBook(ctx context.Context, db database.DBTX, book *model.Book) error {
	rows, err := db.Query(ctx, insertBookQuery, book.Title, book.PublicationYear, book.AuthorName)
	if err != nil {
		return mapWriteError(err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return mapWriteError(err)
	}

	*book = created
	return nil
}

// UpdateBook - ghi title, publication_year, author_name
func (r *postgresRepository) UpdateBook(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, publication_year = $3, author_name = $4, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + bookColumns

	updated, err := r.queryBook(ctx, query, book.ID, book.Title, book.PublicationYear, book.AuthorName)
	if err != nil {
		return mapWriteError(err)
	}

	*book = *updated
	return nil
}

// SoftDeleteBook - set is_deleted; book không tồn tại hoặc đã xóa -> ErrBookNotFound
func (r *postgresRepository) SoftDeleteBook(ctx context.Context, id int64) error {
	query := `
		UPDATE books
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// SoftDeleteBooks - id không khớp bị bỏ qua; trả về số book đã xóa
func (r *postgresRepository) SoftDeleteBooks(ctx context.Context, ids []int64) (int64, error) {
	query := `
		UPDATE books
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = ANY($1) AND is_deleted = FALSE
	`

	result, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to soft delete books: %w", err)
	}
	return result.RowsAffected(), nil
}

// ============================================
// HELPERS
// ============================================

func (r *postgresRepository) queryBooks(ctx context.Context, query string, args ...any) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books query failed: %w", err)
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}
	return books, nil
}

// queryBook - pgx.ErrNoRows -> ErrBookNotFound
func (r *postgresRepository) queryBook(ctx context.Context, query string, args ...any) (*model.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("book query failed: %w", err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// mapWriteError - vi phạm ux_books_title_active -> ErrTitleAlreadyExists
func mapWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err, titleUniqueIndex):
		return model.ErrTitleAlreadyExists
	case errors.Is(err, model.ErrBookNotFound):
		return err
	default:
		return fmt.Errorf("write book: %w", err)
	}
}
