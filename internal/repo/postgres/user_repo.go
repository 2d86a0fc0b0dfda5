package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, req *domain.SignupRequest, passwordHash string, isVerified bool) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailExact(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	ListVerifiedOfficers(ctx context.Context, limit, offset int) ([]domain.User, error)
	MarkVerified(ctx context.Context, userID int64) error
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash, newPasswordHash string) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, role, email, password_hash, name, phone, is_verified,
reset_token_hash, reset_token_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.IsVerified,
		&u.ResetTokenHash, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, req *domain.SignupRequest, passwordHash string, isVerified bool) (*domain.User, error) {
	const q = `
		INSERT INTO users (role, email, password_hash, name, phone, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, req.Role, req.Email, passwordHash, req.Name, req.Phone, isVerified))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// FindByEmailExact matches the stored email byte for byte. Forgot-password
// uses it so lookups behave exactly like the stored representation.
func (r *userRepository) FindByEmailExact(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + userCols + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.IsVerified,
			&u.ResetTokenHash, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *userRepository) ListVerifiedOfficers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + userCols + `
		FROM users
		WHERE role = 'officer' AND is_verified = true
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.IsVerified,
			&u.ResetTokenHash, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *userRepository) MarkVerified(ctx context.Context, userID int64) error {
	const q = `UPDATE users SET is_verified = true, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetResetToken persists only the digest and its expiry; nothing else on
// the record is touched or re-validated.
func (r *userRepository) SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ConsumePasswordReset sets the new password hash and clears the reset
// fields in one statement, conditional on the digest matching and not yet
// being expired. Two racing resets with the same secret cannot both
// succeed: the loser sees the cleared digest and gets no row back.
func (r *userRepository) ConsumePasswordReset(ctx context.Context, tokenHash, newPasswordHash string) (int64, error) {
	const q = `
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_token_expires = NULL,
		    updated_at = now()
		WHERE reset_token_hash = $1
		  AND reset_token_expires > now()
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var userID int64
	err := r.pool.QueryRow(ctx, q, tokenHash, newPasswordHash).Scan(&userID)
	if err == pgx.ErrNoRows {
		return 0, nil // wrong secret, expired, or already used
	}
	return userID, err
}
