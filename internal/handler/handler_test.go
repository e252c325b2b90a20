package handler

import (
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Shared helpers for handler tests.

var errNoRows = pgx.ErrNoRows

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
