package store

import (
	"database/sql"
	"fmt"
	"time"
)

func scanCategory(r rowScanner) (*Category, error) {
	c := &Category{}
	var createdAt, updatedAt string
	err := r.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

func (s *queries) CreateCategory(c *Category) error {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	res, err := s.q.Exec(
		`INSERT INTO categories (name, icon, color, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Icon, c.Color, c.Description, nowStr, nowStr,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (s *queries) GetCategory(id int64) (*Category, error) {
	c, err := scanCategory(s.q.QueryRow(
		`SELECT id, name, icon, color, description, created_at, updated_at
		 FROM categories WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (s *queries) ListCategories() ([]Category, error) {
	rows, err := s.q.Query(
		`SELECT id, name, icon, color, description, created_at, updated_at
		 FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

func (s *queries) UpdateCategory(c *Category) error {
	now := time.Now().UTC()
	_, err := s.q.Exec(
		`UPDATE categories SET name = ?, icon = ?, color = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Icon, c.Color, c.Description, now.Format(time.RFC3339), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	c.UpdatedAt = now
	return nil
}

func (s *queries) DeleteCategory(id int64) error {
	res, err := s.q.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
