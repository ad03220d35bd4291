package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleksandergreg/storefront/app/routes"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/router"
	"github.com/Aleksandergreg/storefront/pkg/ws"
)

func newTestAPI(t *testing.T) (http.Handler, *ws.Hub) {
	t.Helper()

	kv := kvstore.NewMemory()
	cart := stores.NewCartStore(kv)
	wishlist := stores.NewWishlistStore(kv)
	address := stores.NewAddressStore(kv)

	hub := ws.NewHub()
	go hub.Run()
	ws.ForwardChanges(hub)

	r := router.New()
	err := routes.RegisterAPI(r, routes.Deps{
		Session:  stores.NewSessionStore(kv, wishlist, address),
		Cart:     cart,
		Orders:   stores.NewOrderStore(kv, cart),
		Wishlist: wishlist,
		Address:  address,
		Hub:      hub,
	})
	require.NoError(t, err)
	return r.Handler(), hub
}

type apiEnvelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func do(t *testing.T, h http.Handler, method, path, token, device string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env apiEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/login", "", "", map[string]string{
		"email": email, "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestGuestCartFlow(t *testing.T) {
	h, _ := newTestAPI(t)

	item := map[string]interface{}{"id": "p1", "name": "Mug", "price": 10.0}
	rec, _ := do(t, h, http.MethodPost, "/api/cart", "", "ios-123", item)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, env := do(t, h, http.MethodPost, "/api/cart", "", "ios-123", item)
	var cart struct {
		Items []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.Total)

	// Another device sees an empty cart.
	_, env = do(t, h, http.MethodGet, "/api/cart", "", "android-999", nil)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Empty(t, cart.Items)
}

func TestAddFreeItem(t *testing.T) {
	h, _ := newTestAPI(t)

	rec, env := do(t, h, http.MethodPost, "/api/cart", "", "ios-123", map[string]interface{}{
		"id": "p9", "name": "Sticker", "price": 0.0,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart struct {
		Items []struct {
			Price float64 `json:"price"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 0.0, cart.Total)
}

func TestCartRequiresIdentity(t *testing.T) {
	h, _ := newTestAPI(t)
	rec, _ := do(t, h, http.MethodGet, "/api/cart", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	h, _ := newTestAPI(t)

	rec, env := do(t, h, http.MethodPost, "/api/login", "", "", map[string]string{
		"email": "not-an-email", "password": "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "email")

	rec, _ = do(t, h, http.MethodPost, "/api/login", "", "", map[string]string{
		"email": "a@x.com", "password": "",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWishlistOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	token := login(t, h, "a@x.com")

	item := map[string]interface{}{"id": "p2", "name": "Poster", "price": 5.0}
	rec, _ := do(t, h, http.MethodPost, "/api/wishlist", token, "", item)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// Idempotent add.
	_, env := do(t, h, http.MethodPost, "/api/wishlist", token, "", item)
	var body struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Len(t, body.Items, 1)

	// A non-permutation reorder is rejected.
	rec, _ = do(t, h, http.MethodPut, "/api/wishlist/order", token, "", map[string]interface{}{
		"ids": []string{"p2", "p3"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Without a token the wishlist is off limits.
	rec, _ = do(t, h, http.MethodGet, "/api/wishlist", "", "ios-123", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddressValidationOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	token := login(t, h, "a@x.com")

	rec, env := do(t, h, http.MethodPut, "/api/address", token, "", map[string]string{
		"full_name": "Ada Lovelace",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "line1")
	assert.Contains(t, env.Errors, "city")
	assert.Contains(t, env.Errors, "postal_code")
	assert.Contains(t, env.Errors, "country")

	valid := map[string]string{
		"full_name": "Ada Lovelace", "line1": "1 Way", "city": "London",
		"postal_code": "N1 9GU", "country": "GB",
	}
	rec, _ = do(t, h, http.MethodPut, "/api/address", token, "", valid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, env = do(t, h, http.MethodGet, "/api/address", token, "", nil)
	var addr struct {
		City string `json:"city"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &addr))
	assert.Equal(t, "London", addr.City)
}

func TestOrderCompletionOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	token := login(t, h, "a@x.com")

	_, _ = do(t, h, http.MethodPost, "/api/cart", token, "", map[string]interface{}{
		"id": "p1", "name": "Mug", "price": 10.0, "quantity": 2,
	})

	rec, env := do(t, h, http.MethodPost, "/api/orders?wait=true", token, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, 20.0, order.Total)

	_, env = do(t, h, http.MethodGet, "/api/orders", token, "", nil)
	var list struct {
		Orders  []json.RawMessage `json:"orders"`
		Version uint64            `json:"version"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Orders, 1)
	assert.EqualValues(t, 1, list.Version)

	// Anonymous devices cannot complete orders.
	rec, _ = do(t, h, http.MethodPost, "/api/orders", "", "ios-123", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGraphQLQuery(t *testing.T) {
	h, _ := newTestAPI(t)
	token := login(t, h, "a@x.com")

	_, _ = do(t, h, http.MethodPost, "/api/cart", token, "", map[string]interface{}{
		"id": "p1", "name": "Mug", "price": 10.0,
	})
	_, _ = do(t, h, http.MethodPost, "/api/orders", token, "", nil)

	rec, env := do(t, h, http.MethodPost, "/api/graphql", token, "", map[string]string{
		"query": `{ cart { total } orders { id total } ordersVersion }`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Data struct {
			Cart struct {
				Total float64 `json:"total"`
			} `json:"cart"`
			Orders []struct {
				ID string `json:"id"`
			} `json:"orders"`
			OrdersVersion int `json:"ordersVersion"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 10.0, result.Data.Cart.Total)
	require.Len(t, result.Data.Orders, 1)
	assert.Equal(t, 1, result.Data.OrdersVersion)
}

func TestWebsocketPushOnCartChange(t *testing.T) {
	h, hub := newTestAPI(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	header := http.Header{}
	header.Set("X-Device-ID", "ios-123")
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err, "upgrade must survive the full middleware chain")
	defer conn.Close()

	// The handshake finishes before the hub registers the client; wait for
	// registration so the mutation below cannot race past it.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	_, _ = do(t, h, http.MethodPost, "/api/cart", "", "ios-123", map[string]interface{}{
		"id": "p1", "name": "Mug", "price": 10.0,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var change struct {
		Event      string `json:"event"`
		Collection string `json:"collection"`
		Version    uint64 `json:"version"`
	}
	require.NoError(t, json.Unmarshal(frame, &change))
	assert.Equal(t, "cart.updated", change.Event)
	assert.Equal(t, "cart", change.Collection)
	assert.EqualValues(t, 1, change.Version)
}
