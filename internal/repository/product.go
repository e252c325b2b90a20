package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tkarlsen/bodega/internal/domain"
)

const productColumns = `id, name, image, category, price_paise, original_price_paise, discount_percent, available, popular, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.PricePaise,
		&p.OriginalPricePaise, &p.DiscountPercent, &p.Available, &p.Popular, &p.CreatedAt)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProduct inserts a product. Ids are assigned sequentially
// starting at domain.FirstProductID.
func (s *Store) CreateProduct(ctx context.Context, params domain.CreateProductParams) (domain.Product, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO products (id, name, image, category, price_paise, original_price_paise, discount_percent, available, popular)
		VALUES (
			(SELECT COALESCE(MAX(id), $1 - 1) + 1 FROM products),
			$2, $3, $4, $5, $6, $7, TRUE, FALSE
		)
		RETURNING `+productColumns,
		domain.FirstProductID, params.Name, params.Image, params.Category,
		params.PricePaise, params.OriginalPricePaise, params.DiscountPercent)
	return scanProduct(row)
}

// GetProduct returns one product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListProducts returns the full catalog, oldest first.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListNewestProducts returns the n most recently added products,
// newest first.
func (s *Store) ListNewestProducts(ctx context.Context, n int32) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListPopularProducts returns products flagged popular.
func (s *Store) ListPopularProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE popular ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// TogglePopular flips a product's popular flag and returns the new value.
func (s *Store) TogglePopular(ctx context.Context, id int64) (bool, error) {
	var popular bool
	err := s.db.QueryRow(ctx,
		`UPDATE products SET popular = NOT popular WHERE id = $1 RETURNING popular`, id).Scan(&popular)
	return popular, err
}

// UpdateProduct applies the non-nil fields of params and returns the
// updated row.
func (s *Store) UpdateProduct(ctx context.Context, id int64, params domain.UpdateProductParams) (domain.Product, error) {
	sets := []string{}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Image != nil {
		add("image", *params.Image)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.PricePaise != nil {
		add("price_paise", *params.PricePaise)
	}
	if params.OriginalPricePaise != nil {
		add("original_price_paise", *params.OriginalPricePaise)
	}
	if params.DiscountPercent != nil {
		add("discount_percent", *params.DiscountPercent)
	}
	if params.Available != nil {
		add("available", *params.Available)
	}
	if len(sets) == 0 {
		return s.GetProduct(ctx, id)
	}
	row := s.db.QueryRow(ctx,
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+productColumns,
		args...)
	return scanProduct(row)
}

// DeleteProduct removes a product. Returns pgx.ErrNoRows if the id is
// unknown.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
