package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tkarlsen/bodega/internal/domain"
)

// CreateCheckoutAttempt records a newly issued payment session.
func (s *Store) CreateCheckoutAttempt(ctx context.Context, sessionID string, userID, amountCents int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO checkout_attempts (session_id, user_id, amount_cents, status)
		VALUES ($1, $2, $3, $4)`,
		sessionID, userID, amountCents, domain.AttemptPending)
	return err
}

// GetCheckoutAttempt returns one attempt by session id.
func (s *Store) GetCheckoutAttempt(ctx context.Context, sessionID string) (domain.CheckoutAttempt, error) {
	var a domain.CheckoutAttempt
	err := s.db.QueryRow(ctx, `
		SELECT session_id, user_id, amount_cents, status, created_at
		FROM checkout_attempts WHERE session_id = $1`, sessionID).
		Scan(&a.SessionID, &a.UserID, &a.AmountCents, &a.Status, &a.CreatedAt)
	return a, err
}

// SetCheckoutAttemptStatus updates an attempt's status.
func (s *Store) SetCheckoutAttemptStatus(ctx context.Context, sessionID, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE checkout_attempts SET status = $2 WHERE session_id = $1`, sessionID, status)
	return err
}

// InsertOrder creates an order for a checkout session. If the session
// was already finalized the insert is a no-op and created is false;
// callers then read back the existing order.
func (s *Store) InsertOrder(ctx context.Context, userID int64, sessionID string, amountCents int64, currency string) (orderID int64, created bool, err error) {
	err = s.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, checkout_session_id, amount_cents, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (checkout_session_id) DO NOTHING
		RETURNING id`,
		userID, sessionID, amountCents, currency).Scan(&orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return orderID, true, nil
}

// SnapshotOrderItems copies the user's non-empty cart lines into
// order_items, capturing product name and unit price at order time.
// Returns the product ids that were captured.
func (s *Store) SnapshotOrderItems(ctx context.Context, orderID, userID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO order_items (order_id, product_id, name, quantity, unit_price_paise)
		SELECT $1, p.id, p.name, c.quantity, p.price_paise
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $2 AND c.quantity > 0
		RETURNING product_id`,
		orderID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FinalizeOrderParams identifies the payment session being turned
// into an order.
type FinalizeOrderParams struct {
	UserID      int64
	SessionID   string
	AmountCents int64
	Currency    string
}

// FinalizeOrder turns a paid checkout session into an order in one
// transaction: insert the order, snapshot the charged cart lines,
// clear them, and mark the attempt completed. A session that was
// already finalized returns the existing order with created false and
// changes nothing.
func (s *Store) FinalizeOrder(ctx context.Context, params FinalizeOrderParams) (domain.Order, bool, error) {
	var order domain.Order
	var created bool
	err := s.WithTx(ctx, func(tx *Store) error {
		orderID, ok, err := tx.InsertOrder(ctx, params.UserID, params.SessionID, params.AmountCents, params.Currency)
		if err != nil {
			return err
		}
		created = ok
		if !ok {
			order, err = tx.GetOrderBySessionID(ctx, params.SessionID)
			return err
		}
		charged, err := tx.SnapshotOrderItems(ctx, orderID, params.UserID)
		if err != nil {
			return err
		}
		if err := tx.ClearCartItems(ctx, params.UserID, charged); err != nil {
			return err
		}
		if err := tx.SetCheckoutAttemptStatus(ctx, params.SessionID, domain.AttemptCompleted); err != nil {
			return err
		}
		order, err = tx.GetOrderBySessionID(ctx, params.SessionID)
		return err
	})
	return order, created, err
}

// GetOrderBySessionID returns the order finalized for a checkout
// session, with its items.
func (s *Store) GetOrderBySessionID(ctx context.Context, sessionID string) (domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, checkout_session_id, amount_cents, currency, placed_at
		FROM orders WHERE checkout_session_id = $1`, sessionID).
		Scan(&o.ID, &o.UserID, &o.CheckoutSessionID, &o.AmountCents, &o.Currency, &o.PlacedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items, err = s.listOrderItems(ctx, o.ID)
	return o, err
}

// ListOrdersByUser returns the user's orders, newest first, with items.
func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, checkout_session_id, amount_cents, currency, placed_at
		FROM orders WHERE user_id = $1 ORDER BY placed_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CheckoutSessionID, &o.AmountCents, &o.Currency, &o.PlacedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := s.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *Store) listOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT product_id, name, quantity, unit_price_paise
		FROM order_items WHERE order_id = $1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPricePaise); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
