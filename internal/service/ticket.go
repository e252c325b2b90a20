package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// TicketStore is the persistence surface the ticket service needs.
type TicketStore interface {
	CreateTicket(ctx context.Context, params domain.CreateTicketParams) (domain.SupportTicket, error)
	ListTickets(ctx context.Context) ([]domain.SupportTicket, error)
	DeleteTicket(ctx context.Context, id int64) error
}

// TicketService manages customer support tickets.
type TicketService struct {
	store   TicketStore
	metrics *telemetry.BusinessMetrics
	logger  zerolog.Logger
}

// NewTicketService creates a support ticket service.
func NewTicketService(store TicketStore, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *TicketService {
	return &TicketService{
		store:   store,
		metrics: metrics,
		logger:  logger.With().Str("service", "ticket").Logger(),
	}
}

// Create opens a ticket. The product reference is stored as the
// customer typed it.
func (s *TicketService) Create(ctx context.Context, params domain.CreateTicketParams) (domain.SupportTicket, error) {
	t, err := s.store.CreateTicket(ctx, params)
	if err != nil {
		return domain.SupportTicket{}, domain.Internal(err, "ticket.create", "failed to create ticket")
	}

	s.metrics.TicketsOpened.Inc()
	s.logger.Info().Int64("ticket_id", t.ID).Msg("support ticket opened")
	return t, nil
}

// List returns all tickets, newest first. Admin only; enforcement
// happens at the route.
func (s *TicketService) List(ctx context.Context) ([]domain.SupportTicket, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, domain.Internal(err, "ticket.list", "failed to list tickets")
	}
	return tickets, nil
}

// Delete removes a resolved ticket.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteTicket(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTicketNotFound
	}
	if err != nil {
		return domain.Internal(err, "ticket.delete", "failed to delete ticket")
	}
	return nil
}
