package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/store/products", r.URL.Path)
		assert.Equal(t, "pk_test_123", r.Header.Get("x-publishable-api-key"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "4", r.URL.Query().Get("offset"))
		assert.Equal(t, "mug", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"products": []map[string]interface{}{
				{
					"id": "prod_1", "title": "Mug", "thumbnail": "mug.png",
					"variants": []map[string]interface{}{
						{"id": "var_1", "prices": []map[string]interface{}{
							{"amount": 9500, "currency_code": "dkk"},
						}},
					},
				},
			},
			"count": 1, "offset": 4, "limit": 2,
		})
	}))
	defer srv.Close()

	catalog := NewCatalogService(srv.URL, "pk_test_123")
	products, page, err := catalog.ListProducts(context.Background(), 2, 4, "mug")
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Title)
	assert.EqualValues(t, 1, page.Count)

	price, ok := products[0].DisplayPrice("dkk")
	require.True(t, ok)
	assert.Equal(t, 95.0, price)
}

func TestCatalogGetProductUnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	catalog := NewCatalogService(srv.URL, "pk")
	_, err := catalog.GetProduct(context.Background(), "prod_missing")

	// A 404 from the catalog is a missing product, not an outage.
	assert.ErrorIs(t, err, ErrNoResults)
	assert.NotErrorIs(t, err, ErrUpstream)
}

func TestCatalogGetProductUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	catalog := NewCatalogService(srv.URL, "pk")
	_, err := catalog.GetProduct(context.Background(), "prod_1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "55.6761", r.URL.Query().Get("lat"))
		json.NewEncoder(w).Encode(map[string]string{"display_name": "Rådhuspladsen 1, København"})
	}))
	defer srv.Close()

	geo := NewGeocodeService(srv.URL)
	addr, err := geo.ReverseGeocode(context.Background(), 55.6761, 12.5683)
	require.NoError(t, err)
	assert.Equal(t, "Rådhuspladsen 1, København", addr)
}

func TestReverseGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Unable to geocode"})
	}))
	defer srv.Close()

	geo := NewGeocodeService(srv.URL)
	_, err := geo.ReverseGeocode(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestCreatePaymentSheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

		switch r.URL.Path {
		case "/v1/customers":
			assert.Equal(t, "a@x.com", r.PostForm.Get("email"))
			json.NewEncoder(w).Encode(map[string]string{"id": "cus_1"})
		case "/v1/ephemeral_keys":
			assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
			assert.NotEmpty(t, r.Header.Get("Stripe-Version"))
			json.NewEncoder(w).Encode(map[string]string{"secret": "ek_secret"})
		case "/v1/payment_intents":
			// 19.995 major units rounds half-up to 2000 minor units.
			assert.Equal(t, "2000", r.PostForm.Get("amount"))
			assert.Equal(t, "dkk", r.PostForm.Get("currency"))
			assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
			json.NewEncoder(w).Encode(map[string]string{"client_secret": "pi_secret"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	pay := NewPaymentService(srv.URL, "sk_test_123", "pk_test_123")
	sheet, err := pay.CreatePaymentSheet(context.Background(), "a@x.com", 19.995, "dkk")
	require.NoError(t, err)

	assert.Equal(t, PaymentSheet{
		PaymentIntent:  "pi_secret",
		EphemeralKey:   "ek_secret",
		Customer:       "cus_1",
		PublishableKey: "pk_test_123",
	}, sheet)
}

func TestParseBiometricOutcome(t *testing.T) {
	out, err := ParseBiometricOutcome("SUCCESS")
	require.NoError(t, err)
	assert.True(t, out.Allows())

	for _, s := range []string{"CANCELLED", "NOT_SUPPORTED", "NOT_ENROLLED", "ERROR"} {
		out, err := ParseBiometricOutcome(s)
		require.NoError(t, err)
		assert.False(t, out.Allows())
		assert.NotEmpty(t, out.Message())
	}

	_, err = ParseBiometricOutcome("touch-id")
	assert.Error(t, err)
}
