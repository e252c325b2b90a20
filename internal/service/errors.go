package service

import (
	"github.com/tkarlsen/bodega/internal/domain"
)

// Catalog errors - use domain.ENOTFOUND
var (
	ErrProductNotFound = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrOrderNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrTicketNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Ticket not found")
	ErrUserNotFound    = domain.Errorf(domain.ENOTFOUND, "", "User not found")
	ErrUnknownAttempt  = domain.Errorf(domain.ENOTFOUND, "", "Unknown checkout session")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrEmptyCart       = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrAddressRequired = domain.Errorf(domain.EINVALID, "", "A shipping address is required before checkout")
	ErrInvalidPrice    = domain.Errorf(domain.EINVALID, "", "Price must be greater than 0")
	ErrMissingUserID   = domain.Errorf(domain.EINVALID, "", "User ID missing from session metadata")
)

// Auth errors
var (
	ErrEmailTaken         = domain.Errorf(domain.ECONFLICT, "", "An account with this email already exists")
	ErrInvalidCredentials = domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid email or password")
)

// Payment errors
var (
	ErrPaymentNotSucceeded = domain.Errorf(domain.EPAYMENT, "", "Payment has not succeeded")
)
