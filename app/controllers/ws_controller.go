package controllers

import (
	"net/http"

	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/ws"
)

type WSController struct {
	hub *ws.Hub
}

func NewWSController(hub *ws.Hub) *WSController {
	return &WSController{hub: hub}
}

// Connect upgrades the request to a WebSocket bound to the request's owner,
// so the socket only ever receives that owner's store-change notices.
func (c *WSController) Connect(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, c.hub, middleware.OwnerFromCtx(r.Context()))
}
