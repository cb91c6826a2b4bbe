package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"book-catalog-api/internal/domains/user"
	"book-catalog-api/pkg/database"
)

const emailUniqueIndex = "ux_users_email"

// postgresRepository là concrete implementation của user.Repository interface
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository return interface, implementation giữ private
func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

// Create insert users + user_roles trong một transaction
func (r *postgresRepository) Create(ctx context.Context, u *user.User, role user.Role) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (id, user_name, email, password_hash, full_name)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			u.ID, u.UserName, u.Email, u.PasswordHash, u.FullName,
		).Scan(&u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			if database.IsUniqueViolation(err, emailUniqueIndex) {
				return user.ErrEmailAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if err := addRole(ctx, tx, u.ID, role); err != nil {
			return err
		}

		u.Roles = []user.Role{role}
		return nil
	})
}

// FindByEmail tìm user theo email kèm danh sách roles
func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT u.id, u.user_name, u.email, u.password_hash, u.full_name,
		       u.created_at, u.updated_at,
		       COALESCE(array_agg(ro.name ORDER BY ro.name) FILTER (WHERE ro.name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles ro ON ro.id = ur.role_id
		WHERE LOWER(u.email) = LOWER($1)
		GROUP BY u.id
	`

	var (
		u     user.User
		roles []string
	)
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.FullName,
		&u.CreatedAt, &u.UpdatedAt, &roles,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	u.Roles = make([]user.Role, 0, len(roles))
	for _, name := range roles {
		u.Roles = append(u.Roles, user.Role(name))
	}
	return &u, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`,
		strings.TrimSpace(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// ========================================
// ROLES
// ========================================

func (r *postgresRepository) AddRole(ctx context.Context, userID uuid.UUID, role user.Role) error {
	return addRole(ctx, r.pool, userID, role)
}

// EnsureRoles insert các role chưa có, ON CONFLICT giữ nguyên row cũ
func (r *postgresRepository) EnsureRoles(ctx context.Context, roles ...user.Role) error {
	for _, role := range roles {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			role.String(),
		)
		if err != nil {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}
	}
	return nil
}

// addRole chạy được với pool hoặc tx
// User đã có role thì không báo lỗi (idempotent)
func addRole(ctx context.Context, db database.DBTX, userID uuid.UUID, role user.Role) error {
	var roleID int
	err := db.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, role.String()).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", user.ErrRoleNotFound, role)
		}
		return fmt.Errorf("find role %s: %w", role, err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("assign role %s: %w", role, err)
	}
	return nil
}
