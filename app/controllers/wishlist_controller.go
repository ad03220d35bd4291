package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/response"
	"github.com/Aleksandergreg/storefront/pkg/validate"
)

type WishlistController struct {
	wishlist *stores.WishlistStore
}

func NewWishlistController(wishlist *stores.WishlistStore) *WishlistController {
	return &WishlistController{wishlist: wishlist}
}

func (c *WishlistController) Items(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	items, err := c.wishlist.Items(r.Context(), owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"items":   items,
		"version": c.wishlist.Version(owner),
	})
}

type wishlistAddInput struct {
	ID        string  `json:"id"    validate:"required"`
	Name      string  `json:"name"  validate:"required"`
	Price     float64 `json:"price" validate:"required,numeric,gte=0"`
	Thumbnail string  `json:"thumbnail"`
}

func (c *WishlistController) Add(w http.ResponseWriter, r *http.Request) {
	var body wishlistAddInput
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	items, err := c.wishlist.Add(r.Context(), owner, models.WishlistItem{
		ID:        body.ID,
		Name:      body.Name,
		Price:     body.Price,
		Thumbnail: body.Thumbnail,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"items": items})
}

func (c *WishlistController) Remove(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	items, err := c.wishlist.Remove(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"items": items})
}

// Reorder commits the order the user arrived at by drag-and-drop.
func (c *WishlistController) Reorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if !decode(w, r, &body) {
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	items, err := c.wishlist.Reorder(r.Context(), owner, body.IDs)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"items": items})
}
