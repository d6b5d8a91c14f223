package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/dresi/internal/model"
)

const userColumns = `id, username, password_hash, role, created_at`

func scanUser(s scanner, u *model.User) error {
	return s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
}

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string) (model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return model.User{}, translate("creating user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, translate("getting user id", err)
	}
	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (model.User, error) {
	var u model.User
	err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id), &u)
	if err != nil {
		return model.User{}, translate("getting user", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (model.User, error) {
	var u model.User
	err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username), &u)
	if err != nil {
		return model.User{}, translate("getting user by username", err)
	}
	return u, nil
}

// CountUsers returns the number of accounts.
func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, translate("counting users", err)
	}
	return n, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	err := updateColumns(ctx, db, "users", id, []string{"password_hash = ?"}, []any{passwordHash})
	if err != nil {
		return translate("updating user password", err)
	}
	return nil
}
