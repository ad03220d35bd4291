package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Aleksandergreg/storefront/pkg/http"
)

// ErrNoResults is returned when an upstream lookup comes back empty: the
// geocoder has no address for the point, or the catalog has no product for
// the id. Controllers map it to 404.
var ErrNoResults = errors.New("services: no results")

// GeocodeService resolves device coordinates into a formatted address that
// pre-fills the shipping address form.
type GeocodeService struct {
	baseURL string
}

func NewGeocodeService(baseURL string) *GeocodeService {
	return &GeocodeService{baseURL: baseURL}
}

type reverseGeocodeResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ReverseGeocode returns the best-match formatted address for lat/lon.
func (s *GeocodeService) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	resp, err := http.Get(s.baseURL+"/reverse").
		Query("lat", strconv.FormatFloat(lat, 'f', -1, 64)).
		Query("lon", strconv.FormatFloat(lon, 'f', -1, 64)).
		Query("format", "json").
		WithContext(ctx).
		Timeout(10 * time.Second).
		Retry(2, 500*time.Millisecond).
		Send()
	if err != nil {
		return "", fmt.Errorf("geocode: reverse: %w", errors.Join(ErrUpstream, err))
	}
	if err := resp.Throw(); err != nil {
		return "", fmt.Errorf("geocode: reverse: %w", errors.Join(ErrUpstream, err))
	}

	var body reverseGeocodeResponse
	if err := resp.JSON(&body); err != nil {
		return "", fmt.Errorf("geocode: decode: %w", err)
	}
	if body.Error != "" || body.DisplayName == "" {
		return "", ErrNoResults
	}
	return body.DisplayName, nil
}
