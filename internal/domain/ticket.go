package domain

import "time"

// SupportTicket is a customer inquiry. ProductRef is free text typed
// by the customer and is not validated against the catalog.
type SupportTicket struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ProductRef string    `json:"product_ref"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateTicketParams holds the fields a customer submits when
// opening a ticket.
type CreateTicketParams struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	ProductRef string `json:"product_ref" validate:"required"`
	Message    string `json:"message" validate:"required"`
}
