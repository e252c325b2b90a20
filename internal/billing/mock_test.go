package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderSessionLifecycle(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	sess, err := m.CreateCheckoutSession(ctx, CreateSessionParams{
		Currency: "usd",
		LineItems: []LineItem{
			{Name: "Striped Shirt", UnitAmountCents: 100, Quantity: 2},
			{Name: "Denim Jacket", UnitAmountCents: 2979, Quantity: 1},
		},
		Metadata: map[string]string{"user_id": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3179), sess.AmountTotalCents)
	assert.Equal(t, "unpaid", sess.PaymentStatus)

	got, err := m.GetCheckoutSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	paid, ok := m.MarkPaid(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "paid", paid.PaymentStatus)
}

func TestMockProviderUnknownSession(t *testing.T) {
	m := NewMockProvider()

	_, err := m.GetCheckoutSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStripeConfigValidate(t *testing.T) {
	cfg := StripeConfig{
		APIKey:        "sk_test_abc",
		WebhookSecret: "whsec_abc",
		SuccessURL:    "http://localhost:3000/success",
		CancelURL:     "http://localhost:3000/cart",
	}
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsTestMode())

	cfg.WebhookSecret = ""
	assert.Error(t, cfg.Validate())
}
