package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tkarlsen/bodega/internal/domain"
)

// CreateTicket stores a support ticket.
func (s *Store) CreateTicket(ctx context.Context, params domain.CreateTicketParams) (domain.SupportTicket, error) {
	var t domain.SupportTicket
	err := s.db.QueryRow(ctx, `
		INSERT INTO support_tickets (name, email, phone, product_ref, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, phone, product_ref, message, created_at`,
		params.Name, params.Email, params.Phone, params.ProductRef, params.Message).
		Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.ProductRef, &t.Message, &t.CreatedAt)
	return t, err
}

// ListTickets returns all tickets, newest first.
func (s *Store) ListTickets(ctx context.Context) ([]domain.SupportTicket, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, phone, product_ref, message, created_at
		FROM support_tickets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.SupportTicket
	for rows.Next() {
		var t domain.SupportTicket
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.ProductRef, &t.Message, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// DeleteTicket removes a ticket. Returns pgx.ErrNoRows if the id is
// unknown.
func (s *Store) DeleteTicket(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM support_tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
