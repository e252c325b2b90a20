package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/service"
)

type stubTicketStore struct {
	tickets map[int64]domain.SupportTicket
	nextID  int64
}

func (s *stubTicketStore) CreateTicket(_ context.Context, params domain.CreateTicketParams) (domain.SupportTicket, error) {
	s.nextID++
	t := domain.SupportTicket{
		ID:         s.nextID,
		Name:       params.Name,
		Email:      params.Email,
		Phone:      params.Phone,
		ProductRef: params.ProductRef,
		Message:    params.Message,
		CreatedAt:  time.Now(),
	}
	s.tickets[t.ID] = t
	return t, nil
}

func (s *stubTicketStore) ListTickets(_ context.Context) ([]domain.SupportTicket, error) {
	var out []domain.SupportTicket
	for _, t := range s.tickets {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTicketStore) DeleteTicket(_ context.Context, id int64) error {
	if _, ok := s.tickets[id]; !ok {
		return errNoRows
	}
	delete(s.tickets, id)
	return nil
}

func newTicketTestServer(t *testing.T, store *stubTicketStore) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	svc := service.NewTicketService(store, testMetrics, zerolog.Nop())
	NewTicketHandler(svc).RegisterRoutes(e, e.Group("/admin"))
	return e
}

func TestTicketCreateStoresPhone(t *testing.T) {
	store := &stubTicketStore{tickets: map[int64]domain.SupportTicket{}}
	e := newTicketTestServer(t, store)

	body := jsonBody(`{"name":"Asha","email":"asha@example.com","phone":"+91 9999999999","product_ref":"42","message":"broken zipper"}`)
	req := httptest.NewRequest(http.MethodPost, "/support", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.SupportTicket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "+91 9999999999", got.Phone)
	assert.Equal(t, "+91 9999999999", store.tickets[got.ID].Phone)
}

func TestTicketCreateMissingPhone(t *testing.T) {
	e := newTicketTestServer(t, &stubTicketStore{tickets: map[int64]domain.SupportTicket{}})

	body := jsonBody(`{"name":"Asha","email":"asha@example.com","product_ref":"42","message":"broken zipper"}`)
	req := httptest.NewRequest(http.MethodPost, "/support", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
