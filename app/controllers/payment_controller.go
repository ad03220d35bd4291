package controllers

import (
	"net/http"

	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/response"
	"github.com/Aleksandergreg/storefront/pkg/validate"
)

type PaymentController struct {
	payment *services.PaymentService
	cart    *stores.CartStore
}

func NewPaymentController(payment *services.PaymentService, cart *stores.CartStore) *PaymentController {
	return &PaymentController{payment: payment, cart: cart}
}

type paymentSheetInput struct {
	Currency string `json:"currency" validate:"required,min=3,max=3"`
}

// Sheet mints payment-sheet credentials for the logged-in user's current
// cart total. The amount is read from the cart server-side — the client
// never states what it wants to pay.
func (c *PaymentController) Sheet(w http.ResponseWriter, r *http.Request) {
	var body paymentSheetInput
	if !decode(w, r, &body) {
		return
	}
	if errs := validate.Struct(body); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	email := middleware.EmailFromCtx(r.Context())
	owner := middleware.OwnerFromCtx(r.Context())

	total, err := c.cart.Total(r.Context(), owner)
	if err != nil {
		fail(w, r, err)
		return
	}
	if total <= 0 {
		response.Error(w, http.StatusUnprocessableEntity, "Cart is empty")
		return
	}

	sheet, err := c.payment.CreatePaymentSheet(r.Context(), email, total, body.Currency)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, sheet)
}
