package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

const testWebhookSecret = "whsec_test"

// signStripePayload builds a Stripe-Signature header for payload.
func signStripePayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEventPayload(t *testing.T, sessionID string) []byte {
	t.Helper()
	return completedEventPayloadWithVersion(t, sessionID, stripe.APIVersion)
}

func completedEventPayloadWithVersion(t *testing.T, sessionID, apiVersion string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": apiVersion,
		"type":        "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             sessionID,
				"object":         "checkout.session",
				"amount_total":   4480,
				"customer_email": "fallback@example.com",
				"customer_details": map[string]interface{}{
					"email": "buyer@example.com",
				},
				"metadata": map[string]string{
					"productId": "kenya",
					"gram":      "200",
				},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestParseWebhookCompletedSession(t *testing.T) {
	gw := NewStripeGateway("sk_test_dummy", testWebhookSecret)
	payload := completedEventPayload(t, "cs_test_abc")

	event, err := gw.ParseWebhook(payload, signStripePayload(testWebhookSecret, payload))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	require.NotNil(t, event.Completion)
	assert.Equal(t, "cs_test_abc", event.Completion.SessionID)
	assert.Equal(t, "buyer@example.com", event.Completion.Email)
	assert.Equal(t, int64(4480), event.Completion.AmountTotal)
	assert.Equal(t, "kenya", event.Completion.Metadata["productId"])
}

func TestParseWebhookAcceptsOtherAPIVersion(t *testing.T) {
	gw := NewStripeGateway("sk_test_dummy", testWebhookSecret)
	payload := completedEventPayloadWithVersion(t, "cs_test_old", "2022-11-15")

	event, err := gw.ParseWebhook(payload, signStripePayload(testWebhookSecret, payload))
	require.NoError(t, err)
	require.NotNil(t, event.Completion)
	assert.Equal(t, "cs_test_old", event.Completion.SessionID)
	assert.Equal(t, "buyer@example.com", event.Completion.Email)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	gw := NewStripeGateway("sk_test_dummy", testWebhookSecret)
	payload := completedEventPayload(t, "cs_test_abc")

	_, err := gw.ParseWebhook(payload, signStripePayload("whsec_other", payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = gw.ParseWebhook(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestBuildSessionParams(t *testing.T) {
	params := buildSessionParams(SessionRequest{
		Lines: []PricedLine{
			{ProductID: "kenya", ProductName: "Kenya AA", Image: "https://images.test/k.jpg", Roast: "light", Grams: 200, Qty: 2, UnitPrice: 2000},
			{ProductID: "brazil", ProductName: "Brazil", Image: NoImagePlaceholder, Grams: 100, Qty: 1, UnitPrice: 900},
		},
		SuccessURL: "https://shop.test/success",
		CancelURL:  "https://shop.test/cart",
		Metadata:   map[string]string{"productId": "kenya"},
	})

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, []*string{stripe.String("card")}, params.PaymentMethodTypes)
	require.Len(t, params.LineItems, 2)

	first := params.LineItems[0]
	assert.Equal(t, int64(2), *first.Quantity)
	assert.Equal(t, "jpy", *first.PriceData.Currency)
	assert.Equal(t, int64(2000), *first.PriceData.UnitAmount)
	assert.Equal(t, "Kenya AA 200g (light)", *first.PriceData.ProductData.Name)
	assert.Len(t, first.PriceData.ProductData.Images, 1)
	assert.Empty(t, params.LineItems[1].PriceData.ProductData.Images)
	assert.Equal(t, "kenya", params.Metadata["productId"])
}
