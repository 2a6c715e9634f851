package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Widget struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Widgets struct {
	conn *sql.DB
}

// Create inserts w and fills in its ID and timestamps.
func (r *Widgets) Create(ctx context.Context, w *Widget) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO widgets (name, color, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		w.Name, w.Color, w.OwnerID, now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("insert widget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert widget: %w", err)
	}
	w.ID = id
	w.CreatedAt = now
	w.UpdatedAt = now
	return nil
}

func (r *Widgets) FindByID(ctx context.Context, id int64) (*Widget, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT id, name, color, owner_id, created_at, updated_at FROM widgets WHERE id = ?`, id)
	w, err := scanWidget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find widget %d: %w", id, err)
	}
	return w, nil
}

func (r *Widgets) FindAll(ctx context.Context) ([]Widget, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, name, color, owner_id, created_at, updated_at FROM widgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list widgets: %w", err)
	}
	defer rows.Close()

	widgets := []Widget{}
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, fmt.Errorf("list widgets: %w", err)
		}
		widgets = append(widgets, *w)
	}
	return widgets, rows.Err()
}

// Save writes the mutable fields of an existing widget.
func (r *Widgets) Save(ctx context.Context, w *Widget) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.conn.ExecContext(ctx,
		`UPDATE widgets SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
		w.Name, w.Color, now.Unix(), w.ID)
	if err != nil {
		return fmt.Errorf("update widget %d: %w", w.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	w.UpdatedAt = now
	return nil
}

func (r *Widgets) Remove(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM widgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete widget %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWidget(row rowScanner) (*Widget, error) {
	var (
		w                Widget
		created, updated int64
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Color, &w.OwnerID, &created, &updated); err != nil {
		return nil, err
	}
	w.CreatedAt = time.Unix(created, 0).UTC()
	w.UpdatedAt = time.Unix(updated, 0).UTC()
	return &w, nil
}
