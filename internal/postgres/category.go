package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/pixelpalace/storefront-api/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT category_id, name, description
		FROM categories ORDER BY category_id`

	getCategoryByIDSQL = `SELECT category_id, name, description
		FROM categories WHERE category_id = $1`

	createCategorySQL = `INSERT INTO categories (name, description)
		VALUES ($1, $2) RETURNING category_id`

	updateCategorySQL = `UPDATE categories
		SET name = COALESCE($2, name), description = COALESCE($3, description)
		WHERE category_id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE category_id = $1`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	db Querier
}

// NewCategoryRepository returns a CategoryRepository using the given Querier.
func NewCategoryRepository(db Querier) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetByID returns a single category by its identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*catalog.Category, error) {
	rows, err := r.db.Query(ctx, getCategoryByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	return &c, nil
}

// Create inserts a new category and returns its generated id.
func (r *CategoryRepository) Create(ctx context.Context, c catalog.Category) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, createCategorySQL, c.Name, c.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating category %q: %w", c.Name, err)
	}
	return id, nil
}

// Update applies a partial update; nil fields keep their stored values.
func (r *CategoryRepository) Update(ctx context.Context, id int, upd catalog.CategoryUpdate) error {
	tag, err := r.db.Exec(ctx, updateCategorySQL, id, upd.Name, upd.Description)
	if err != nil {
		return fmt.Errorf("updating category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category by id.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description)
	return c, err
}
