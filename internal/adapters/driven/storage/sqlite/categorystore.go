package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

// Ensure categoryStore implements the interface.
var _ driven.CategoryStore = (*categoryStore)(nil)

const categoryColumns = "id, title, parent_id, description, is_active"

// categoryStore wraps Store to implement driven.CategoryStore.
type categoryStore struct {
	store *Store
}

// Save upserts the category and replaces its membership list in one transaction.
func (c *categoryStore) Save(ctx context.Context, category *domain.Category) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var parent sql.NullInt64
	if category.ParentID != nil {
		parent = sql.NullInt64{Int64: *category.ParentID, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (id, title, parent_id, description, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			parent_id = excluded.parent_id,
			description = excluded.description,
			is_active = excluded.is_active
	`, category.ID, category.Title, parent, category.Description, boolToInt(category.IsActive))
	if err != nil {
		return fmt.Errorf("saving category: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM category_fatwas WHERE category_id = ?", category.ID); err != nil {
		return fmt.Errorf("clearing memberships: %w", err)
	}
	for pos, fatwaID := range category.FatwaIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO category_fatwas (category_id, fatwa_id, position)
			VALUES (?, ?, ?)
			ON CONFLICT(category_id, fatwa_id) DO NOTHING
		`, category.ID, fatwaID, pos)
		if err != nil {
			return fmt.Errorf("saving membership: %w", err)
		}
	}

	return tx.Commit()
}

func (c *categoryStore) Get(ctx context.Context, id int64) (*domain.Category, error) {
	row := c.store.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}

	members, err := c.memberships(ctx, "WHERE category_id = ?", id)
	if err != nil {
		return nil, err
	}
	category.FatwaIDs = members[id]
	return category, nil
}

func (c *categoryStore) Delete(ctx context.Context, id int64) error {
	result, err := c.store.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return requireRow(result, "category", id)
}

func (c *categoryStore) List(ctx context.Context) ([]domain.Category, error) {
	return c.query(ctx, "", "")
}

func (c *categoryStore) ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error) {
	return c.query(ctx,
		"WHERE parent_id = ?",
		"WHERE category_id IN (SELECT id FROM categories WHERE parent_id = ?)",
		parentID)
}

func (c *categoryStore) FindByIDs(ctx context.Context, ids []int64) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}
	in := "(" + placeholders(len(ids)) + ")"
	return c.query(ctx, "WHERE id IN "+in, "WHERE category_id IN "+in, int64Args(ids)...)
}

// FindByTitle returns the active category with the lowest id carrying title.
func (c *categoryStore) FindByTitle(ctx context.Context, title string) (*domain.Category, error) {
	var id int64
	err := c.store.db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE title = ? AND is_active = 1 ORDER BY id LIMIT 1", title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", title, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying category by title: %w", err)
	}
	return c.Get(ctx, id)
}

func (c *categoryStore) AttachFatwa(ctx context.Context, categoryID, fatwaID int64) error {
	var exists int
	err := c.store.db.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE id = ?", categoryID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %d: %w", categoryID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("querying category: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO category_fatwas (category_id, fatwa_id, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM category_fatwas WHERE category_id = ?
		ON CONFLICT(category_id, fatwa_id) DO NOTHING
	`, categoryID, fatwaID, categoryID)
	if err != nil {
		return fmt.Errorf("attaching fatwa: %w", err)
	}
	return nil
}

func (c *categoryStore) DetachFatwa(ctx context.Context, fatwaID int64) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM category_fatwas WHERE fatwa_id = ?", fatwaID); err != nil {
		return fmt.Errorf("detaching fatwa: %w", err)
	}
	return nil
}

// query loads categories matching where, ordered by id, with memberships
// loaded by a second query using memberWhere. Both clauses share args.
func (c *categoryStore) query(ctx context.Context, where, memberWhere string, args ...any) ([]domain.Category, error) {
	rows, err := c.store.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return categories, nil
	}

	members, err := c.memberships(ctx, memberWhere, args...)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].FatwaIDs = members[categories[i].ID]
	}
	return categories, nil
}

// memberships returns membership lists keyed by category id, in attach order.
func (c *categoryStore) memberships(ctx context.Context, where string, args ...any) (map[int64][]int64, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT category_id, fatwa_id FROM category_fatwas `+where+` ORDER BY category_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	defer rows.Close()

	members := make(map[int64][]int64)
	for rows.Next() {
		var categoryID, fatwaID int64
		if err := rows.Scan(&categoryID, &fatwaID); err != nil {
			return nil, fmt.Errorf("scanning membership: %w", err)
		}
		members[categoryID] = append(members[categoryID], fatwaID)
	}
	return members, rows.Err()
}

func scanCategory(s scanner) (*domain.Category, error) {
	var (
		category domain.Category
		parent   sql.NullInt64
		isActive int
	)
	if err := s.Scan(&category.ID, &category.Title, &parent, &category.Description, &isActive); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.Int64
		category.ParentID = &p
	}
	category.IsActive = isActive != 0
	return &category, nil
}
