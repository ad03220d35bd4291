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

type CartController struct {
	cart *stores.CartStore
}

func NewCartController(cart *stores.CartStore) *CartController {
	return &CartController{cart: cart}
}

type cartView struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func viewOf(cart models.Cart) cartView {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cartView{Items: cart.Items, Total: cart.Total()}
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	cart, err := c.cart.Get(r.Context(), owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, viewOf(cart))
}

type addItemInput struct {
	ID        string  `json:"id"       validate:"required"`
	Name      string  `json:"name"     validate:"required"`
	Price     float64 `json:"price"    validate:"numeric,gte=0"`
	Quantity  int     `json:"quantity" validate:"nullable,integer,gte=1"`
	Thumbnail string  `json:"thumbnail"`
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var body addItemInput
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	owner := middleware.OwnerFromCtx(r.Context())
	cart, err := c.cart.AddItem(r.Context(), owner, models.CartItem{
		ID:        body.ID,
		Name:      body.Name,
		Price:     body.Price,
		Quantity:  body.Quantity,
		Thumbnail: body.Thumbnail,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, viewOf(cart))
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	owner := middleware.OwnerFromCtx(r.Context())

	cart, err := c.cart.RemoveItem(r.Context(), owner, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, viewOf(cart))
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	if err := c.cart.Clear(r.Context(), owner); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, viewOf(models.Cart{}))
}
