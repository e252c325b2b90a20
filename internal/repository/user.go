package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tkarlsen/bodega/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, address, phone, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Address, &u.Phone, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a new account. Emails are unique; a duplicate
// surfaces as a unique violation.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, address, phone)
		VALUES ($1, $2, $3, $4, $5, '')
		RETURNING `+userColumns,
		name, email, passwordHash, domain.RoleCustomer, domain.AddressUnavailable)
	return scanUser(row)
}

// GetUser returns one user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail returns one user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// EmailExists reports whether an account with the given email exists.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// UpdateUser applies the non-nil fields of params and returns the
// updated row.
func (s *Store) UpdateUser(ctx context.Context, id int64, params domain.UpdateUserParams) (domain.User, error) {
	sets := []string{}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Address != nil {
		add("address", *params.Address)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if len(sets) == 0 {
		return s.GetUser(ctx, id)
	}
	row := s.db.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+userColumns,
		args...)
	return scanUser(row)
}
