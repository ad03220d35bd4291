// Package controllers translates HTTP requests into store and service
// calls. Validation lives here (pkg/validate struct tags) — stores trust
// their input by design.
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/logger"
	"github.com/Aleksandergreg/storefront/pkg/response"
)

// decode reads a JSON body into dest, answering 400 on malformed input.
// Returns false when the request has already been answered.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		response.Error(w, http.StatusBadRequest, "Malformed JSON body")
		return false
	}
	return true
}

// fail maps store and service errors onto HTTP statuses.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, stores.ErrNoSession):
		response.Unauthorized(w)
	case errors.Is(err, stores.ErrEmptyCredentials):
		response.Error(w, http.StatusUnprocessableEntity, "Email and password must be non-empty")
	case errors.Is(err, stores.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, stores.ErrAccountExists):
		response.Error(w, http.StatusConflict, "Account already exists")
	case errors.Is(err, stores.ErrNotPermutation):
		response.Error(w, http.StatusUnprocessableEntity, "Reorder must be a permutation of the current wishlist")
	case errors.Is(err, services.ErrNoResults):
		response.NotFound(w)
	case errors.Is(err, services.ErrUpstream):
		logger.WithCtx(r.Context()).Warn("upstream failure", "error", err, "path", r.URL.Path)
		response.Error(w, http.StatusBadGateway, "Upstream service unavailable")
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
