package controllers

import (
	"net/http"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/response"
	"github.com/Aleksandergreg/storefront/pkg/validate"
)

type AddressController struct {
	address *stores.AddressStore
}

func NewAddressController(address *stores.AddressStore) *AddressController {
	return &AddressController{address: address}
}

func (c *AddressController) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	addr, found, err := c.address.Get(r.Context(), owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !found {
		response.NotFound(w)
		return
	}
	response.Success(w, addr)
}

// Save validates the form fields and persists the address wholesale. This
// is the one place address fields are checked — the store trusts its input.
func (c *AddressController) Save(w http.ResponseWriter, r *http.Request) {
	var body models.ShippingAddress
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	if err := c.address.Save(r.Context(), owner, body); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, body)
}

func (c *AddressController) Clear(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	if err := c.address.Clear(r.Context(), owner); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"cleared": true})
}
