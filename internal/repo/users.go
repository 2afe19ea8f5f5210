package repo

import (
	"context"
	"fmt"

	"leadawaker/internal/models"
)

const userColumns = `id, account_id, username, email, password_hash, full_name, role, status, created_at, updated_at`

const insertUser = `INSERT INTO users (account_id, username, email, password_hash, full_name, role, status,
	created_at, updated_at)
VALUES (:account_id, :username, :email, :password_hash, :full_name, :role, :status, :created_at, :updated_at)
ON CONFLICT DO NOTHING
RETURNING id`

// CreateUser returns ErrConflict when the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	id, err := s.insertNamed(ctx, s.db, insertUser, u)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	u.ID = id
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int) (models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE username = ?", username); err != nil {
		return models.User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email = ?", email); err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, accountID int) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []any
	if accountID > 0 {
		query += " WHERE account_id = ?"
		args = append(args, accountID)
	}
	users := []models.User{}
	if err := s.selectAll(ctx, &users, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.get(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id int, role, status string) error {
	n, err := s.exec(ctx, `UPDATE users SET role = ?, status = CASE WHEN ? = '' THEN status ELSE ? END,
		updated_at = ? WHERE id = ?`, role, status, status, now(), id)
	if err != nil {
		return fmt.Errorf("update user %d role: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update user %d role: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateProfile changes the caller's own email, name and optionally password hash.
func (s *Store) UpdateProfile(ctx context.Context, id int, email, fullName, passwordHash string) error {
	n, err := s.exec(ctx, `UPDATE users SET email = ?, full_name = ?,
		password_hash = CASE WHEN ? = '' THEN password_hash ELSE ? END, updated_at = ? WHERE id = ?`,
		email, fullName, passwordHash, passwordHash, now(), id)
	if err != nil {
		return fmt.Errorf("update profile %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update profile %d: %w", id, ErrNotFound)
	}
	return nil
}
