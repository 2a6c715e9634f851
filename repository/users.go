package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Users struct {
	conn *sql.DB
}

// Create hashes password with bcrypt and inserts the user. A taken name
// yields ErrDuplicate.
func (r *Users) Create(ctx context.Context, name, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (name, password_hash, created_at) VALUES (?, ?, ?)`,
		name, string(hash), now.Unix())
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &User{ID: id, Name: name, PasswordHash: string(hash), CreatedAt: now}, nil
}

func (r *Users) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT id, name, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *Users) FindByName(ctx context.Context, name string) (*User, error) {
	return r.findOne(ctx, `SELECT id, name, password_hash, created_at FROM users WHERE name = ?`, name)
}

// Authenticate returns the user when password matches. Unknown names and
// wrong passwords both yield ErrInvalidCredentials.
func (r *Users) Authenticate(ctx context.Context, name, password string) (*User, error) {
	u, err := r.FindByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (r *Users) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u       User
		created int64
	)
	err := r.conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}
