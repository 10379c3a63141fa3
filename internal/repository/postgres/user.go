package postgres

import (
	"context"
	"fmt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

// selectUser resolves the role as the user's lowest-id group.
const selectUser = `
	SELECT u.id, u.username, u.email, u.password_hash, u.is_active, u.created_at,
		COALESCE((
			SELECT g.name FROM user_groups ug
			JOIN groups g ON g.id = ug.group_id
			WHERE ug.user_id = u.id
			ORDER BY g.id
			LIMIT 1
		), '') AS role
	FROM users u`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "GetUserByID", selectUser+` WHERE u.id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "GetUserByUsername", selectUser+` WHERE u.username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := selectUser + ` WHERE LOWER(u.email) = LOWER($1) AND u.is_active ORDER BY u.id LIMIT 1`
	return r.getOne(ctx, "GetUserByEmail", query, email)
}

func (r *UserRepository) getOne(ctx context.Context, op, query string, arg any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.Role,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("user", arg)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Register creates the account, its customer group membership and its
// customer profile atomically.
func (r *UserRepository) Register(ctx context.Context, u *domain.User, c *domain.Customer) (err error) {
	ctx, end := database.TraceQuery(ctx, "RegisterUser", "INSERT INTO users")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	ct, err := tx.Exec(ctx, `
		INSERT INTO user_groups (user_id, group_id)
		SELECT $1, id FROM groups WHERE name = $2`,
		u.ID, domain.RoleCustomer,
	)
	if err != nil {
		return fmt.Errorf("insert user group: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("group %q is not seeded", domain.RoleCustomer)
	}
	u.Role = domain.RoleCustomer

	c.UserID = &u.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (user_id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_created`,
		u.ID, c.Name, c.Phone, c.Email,
	).Scan(&c.ID, &c.DateCreated)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (err error) {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "UpdateUserPassword", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}
