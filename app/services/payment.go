package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/Aleksandergreg/storefront/pkg/http"
)

// stripeVersion pins the API version for ephemeral keys; the mobile SDK
// requires the key to be minted against the version it speaks.
const stripeVersion = "2024-06-20"

// PaymentService mints payment-sheet credentials against the payment
// provider's REST API (form-encoded, Stripe-style). Amounts are always in
// minor currency units — the cart total is converted exactly once, here.
type PaymentService struct {
	baseURL        string
	secretKey      string
	publishableKey string
}

func NewPaymentService(baseURL, secretKey, publishableKey string) *PaymentService {
	return &PaymentService{baseURL: baseURL, secretKey: secretKey, publishableKey: publishableKey}
}

// PaymentSheet bundles everything the mobile payment sheet needs.
type PaymentSheet struct {
	PaymentIntent  string `json:"payment_intent"` // client secret
	EphemeralKey   string `json:"ephemeral_key"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishable_key"`
}

func (s *PaymentService) post(ctx context.Context, path string, form url.Values, dest interface{}) error {
	resp, err := http.Post(s.baseURL+path).
		Bearer(s.secretKey).
		Header("Stripe-Version", stripeVersion).
		Form(form).
		WithContext(ctx).
		Timeout(15 * time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("payment: %s: %w", path, errors.Join(ErrUpstream, err))
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("payment: %s: %w", path, errors.Join(ErrUpstream, err))
	}
	if err := resp.JSON(dest); err != nil {
		return fmt.Errorf("payment: decode %s: %w", path, err)
	}
	return nil
}

// CreateCustomer registers (or re-registers) the shopper with the provider.
func (s *PaymentService) CreateCustomer(ctx context.Context, email string) (string, error) {
	var body struct {
		ID string `json:"id"`
	}
	form := url.Values{"email": {email}}
	if err := s.post(ctx, "/v1/customers", form, &body); err != nil {
		return "", err
	}
	return body.ID, nil
}

// CreateEphemeralKey mints a short-lived key scoped to one customer.
func (s *PaymentService) CreateEphemeralKey(ctx context.Context, customerID string) (string, error) {
	var body struct {
		Secret string `json:"secret"`
	}
	form := url.Values{"customer": {customerID}}
	if err := s.post(ctx, "/v1/ephemeral_keys", form, &body); err != nil {
		return "", err
	}
	return body.Secret, nil
}

// CreatePaymentIntent opens an intent for the given amount in minor units.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, customerID string) (string, error) {
	var body struct {
		ClientSecret string `json:"client_secret"`
	}
	form := url.Values{
		"amount":                             {strconv.FormatInt(amountMinor, 10)},
		"currency":                           {currency},
		"customer":                           {customerID},
		"automatic_payment_methods[enabled]": {"true"},
	}
	if err := s.post(ctx, "/v1/payment_intents", form, &body); err != nil {
		return "", err
	}
	return body.ClientSecret, nil
}

// CreatePaymentSheet runs the full customer → ephemeral key → intent flow.
// total is a major-unit amount (the cart total); it is converted to minor
// units with math.Round so a value like 19.995, which floats store just
// under 1999.5 cents, still rounds up to 2000 instead of truncating.
func (s *PaymentService) CreatePaymentSheet(ctx context.Context, email string, total float64, currency string) (PaymentSheet, error) {
	customerID, err := s.CreateCustomer(ctx, email)
	if err != nil {
		return PaymentSheet{}, err
	}

	ephemeralKey, err := s.CreateEphemeralKey(ctx, customerID)
	if err != nil {
		return PaymentSheet{}, err
	}

	amountMinor := int64(math.Round(total * 100))
	clientSecret, err := s.CreatePaymentIntent(ctx, amountMinor, currency, customerID)
	if err != nil {
		return PaymentSheet{}, err
	}

	return PaymentSheet{
		PaymentIntent:  clientSecret,
		EphemeralKey:   ephemeralKey,
		Customer:       customerID,
		PublishableKey: s.publishableKey,
	}, nil
}
