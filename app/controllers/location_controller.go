package controllers

import (
	"net/http"
	"strconv"

	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/pkg/response"
)

type LocationController struct {
	geocode *services.GeocodeService
}

func NewLocationController(geocode *services.GeocodeService) *LocationController {
	return &LocationController{geocode: geocode}
}

// Reverse resolves device coordinates into a formatted address used to
// pre-fill the shipping address form. 404 when the geocoder has no match.
func (c *LocationController) Reverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		response.Error(w, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}

	address, err := c.geocode.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"address": address})
}
