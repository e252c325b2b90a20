package repository

import (
	"context"

	"github.com/tkarlsen/bodega/internal/domain"
)

// GetCart returns the user's cart as a product-id -> quantity map.
// Users with no cart rows get an empty, non-nil cart.
func (s *Store) GetCart(ctx context.Context, userID int64) (domain.Cart, error) {
	rows, err := s.db.Query(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE user_id = $1 AND quantity > 0`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := domain.Cart{}
	for rows.Next() {
		var productID int64
		var qty int32
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, err
		}
		cart[productID] = qty
	}
	return cart, rows.Err()
}

// AddCartItem increments a cart line by qty, creating it if absent.
// The INSERT..SELECT keeps unknown product ids out of the cart: zero
// rows affected means the product does not exist.
func (s *Store) AddCartItem(ctx context.Context, userID, productID int64, qty int32) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		SELECT $1, p.id, $3 FROM products p WHERE p.id = $2
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveCartItem decrements a cart line by qty, clamping at zero and
// deleting emptied lines. Removing from an absent line is a no-op.
func (s *Store) RemoveCartItem(ctx context.Context, userID, productID int64, qty int32) error {
	_, err := s.db.Exec(ctx, `
		UPDATE cart_items SET quantity = GREATEST(quantity - $3, 0)
		WHERE user_id = $1 AND product_id = $2`,
		userID, productID, qty)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND quantity = 0`,
		userID, productID)
	return err
}

// ResetCart deletes every cart line for the user.
func (s *Store) ResetCart(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

// ClearCartItems deletes the given product lines from the user's cart.
// Used by order finalization, which only clears the lines it charged
// for.
func (s *Store) ClearCartItems(ctx context.Context, userID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`,
		userID, productIDs)
	return err
}

// MergeCartAndGet folds a guest cart into the user's stored cart in a
// single transaction and returns the merged cart.
func (s *Store) MergeCartAndGet(ctx context.Context, userID int64, items domain.Cart) (domain.Cart, error) {
	var merged domain.Cart
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.MergeCart(ctx, userID, items); err != nil {
			return err
		}
		var err error
		merged, err = tx.GetCart(ctx, userID)
		return err
	})
	return merged, err
}

// MergeCart adds the given quantities into the user's cart in one
// statement. Lines naming unknown products are skipped.
func (s *Store) MergeCart(ctx context.Context, userID int64, items domain.Cart) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(items))
	qtys := make([]int32, 0, len(items))
	for id, qty := range items {
		if qty <= 0 {
			continue
		}
		ids = append(ids, id)
		qtys = append(qtys, qty)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		SELECT $1, p.id, incoming.quantity
		FROM unnest($2::bigint[], $3::int[]) AS incoming(product_id, quantity)
		JOIN products p ON p.id = incoming.product_id
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, ids, qtys)
	return err
}
