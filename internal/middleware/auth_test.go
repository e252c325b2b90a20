package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarlsen/bodega/internal/auth"
	"github.com/tkarlsen/bodega/internal/domain"
)

func authTestServer(tokens *auth.TokenIssuer) *echo.Echo {
	e := echo.New()
	g := e.Group("/api")
	g.Use(AuthJWT(tokens))
	g.GET("/me", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, map[string]int64{"user_id": id})
	})

	admin := e.Group("/admin")
	admin.Use(AuthJWT(tokens), RequireAdmin())
	admin.GET("/tickets", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWTMissingHeader(t *testing.T) {
	e := authTestServer(auth.NewTokenIssuer("secret", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, get(e, "/api/me", "").Code)
}

func TestAuthJWTMalformedHeader(t *testing.T) {
	e := authTestServer(auth.NewTokenIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWTValidToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	e := authTestServer(tokens)

	token, err := tokens.Issue(42, domain.RoleCustomer)
	require.NoError(t, err)

	rec := get(e, "/api/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id": 42}`, rec.Body.String())
}

func TestAuthJWTWrongSecret(t *testing.T) {
	e := authTestServer(auth.NewTokenIssuer("secret", time.Hour))

	token, err := auth.NewTokenIssuer("other-secret", time.Hour).Issue(1, domain.RoleCustomer)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(e, "/api/me", token).Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	e := authTestServer(tokens)

	customer, err := tokens.Issue(1, domain.RoleCustomer)
	require.NoError(t, err)
	admin, err := tokens.Issue(2, domain.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(e, "/admin/tickets", customer).Code)
	assert.Equal(t, http.StatusOK, get(e, "/admin/tickets", admin).Code)
}
