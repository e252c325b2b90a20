package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarlsen/bodega/internal/auth"
	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/events"
)

func userFixture() (*memUserStore, *UserService) {
	store := newMemUserStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewUserService(store, tokens, events.NoopPublisher{}, testMetrics, testLogger)
	return store, svc
}

func TestSignupIssuesToken(t *testing.T) {
	_, svc := userFixture()

	token, user, err := svc.Signup(context.Background(), domain.SignupParams{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, domain.AddressUnavailable, user.Address)

	claims, err := auth.NewTokenIssuer("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	_, svc := userFixture()
	ctx := context.Background()

	params := domain.SignupParams{Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2"}
	_, _, err := svc.Signup(ctx, params)
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, params)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupShortPassword(t *testing.T) {
	_, svc := userFixture()

	_, _, err := svc.Signup(context.Background(), domain.SignupParams{
		Name: "Asha", Email: "asha@example.com", Password: "short",
	})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestLogin(t *testing.T) {
	_, svc := userFixture()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, domain.SignupParams{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "asha@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "asha@example.com", user.Email)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	_, svc := userFixture()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, domain.SignupParams{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, errWrongPass := svc.Login(ctx, "asha@example.com", "not-the-password")
	_, _, errNoUser := svc.Login(ctx, "nobody@example.com", "whatever")

	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
}

func TestCheckEmail(t *testing.T) {
	_, svc := userFixture()
	ctx := context.Background()

	exists, err := svc.CheckEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = svc.Signup(ctx, domain.SignupParams{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	exists, err = svc.CheckEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateProfile(t *testing.T) {
	_, svc := userFixture()
	ctx := context.Background()

	_, user, err := svc.Signup(ctx, domain.SignupParams{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	address := "221B Baker Street"
	phone := "+91 98765 43210"
	updated, err := svc.Update(ctx, user.ID, domain.UpdateUserParams{Address: &address, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, address, updated.Address)
	assert.Equal(t, phone, updated.Phone)
	assert.True(t, updated.HasAddress())

	// Name untouched by a partial update.
	assert.Equal(t, "Asha", updated.Name)
}

func TestProfileUnknownUser(t *testing.T) {
	_, svc := userFixture()

	_, err := svc.Profile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
