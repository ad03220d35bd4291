package controllers

import (
	"net/http"

	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/response"
)

type OrderController struct {
	orders *stores.OrderStore
}

func NewOrderController(orders *stores.OrderStore) *OrderController {
	return &OrderController{orders: orders}
}

// Complete records the current cart as a new order. `?wait=true` makes the
// call block until the history write is durable; without it the write
// races behind the response.
func (c *OrderController) Complete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	wait := r.URL.Query().Get("wait") == "true"

	order, err := c.orders.CompleteOrder(r.Context(), owner, wait)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, order)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	orders, err := c.orders.Orders(r.Context(), owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"orders":  orders,
		"version": c.orders.Version(owner),
	})
}

// Version exposes the refresh counter so clients can cheaply poll for new
// orders without fetching the whole history.
func (c *OrderController) Version(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromCtx(r.Context())
	response.Success(w, map[string]uint64{"version": c.orders.Version(owner)})
}
