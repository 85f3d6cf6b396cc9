// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/pkg/uuidv7"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] on users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var selectUser = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s`,
	schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Password,
	schema.UserAccount.Role, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	schema.UserAccount.Table,
)

func (repository *PostgresUserRepository) findOne(context context.Context, column string, value string, action string) (*User, error) {
	query := fmt.Sprintf(`%s WHERE %s = $1`, selectUser, column)

	var user User
	var role string
	err := repository.pool.QueryRow(context, query, value).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.WrapNotFound(err, "User", action)
	}

	user.Role = sec.UserRole(role)
	return &user, nil
}

func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	// A malformed id cannot exist; avoid the uuid cast error.
	if !uuidv7.Valid(id) {
		return nil, apperr.NotFound("User")
	}
	return repository.findOne(context, schema.UserAccount.ID, id, "find_user_by_id")
}

func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, schema.UserAccount.Username, username, "find_user_by_username")
}

/*
Create persists a new user record into the users.account table.

Returns:
  - error: apperr.Conflict on a duplicate username
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $5)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Password,
		schema.UserAccount.Role, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query, user.ID, user.Username, user.PasswordHash, string(user.Role), now)
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("Username is already taken").WithCause(err)
	}
	return dberr.Wrap(err, "create_user")
}

func (repository *PostgresUserRepository) UpdateCredentials(context context.Context, user *User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1 RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.Password, schema.UserAccount.Role, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, user.ID, user.PasswordHash, string(user.Role)).Scan(&user.UpdatedAt)
	if err != nil {
		return dberr.WrapNotFound(err, "User", "update_user_credentials")
	}
	return nil
}
