package routes

import (
	"net/http"
	"time"

	"github.com/Aleksandergreg/storefront/app/controllers"
	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/reqid"
	"github.com/Aleksandergreg/storefront/pkg/response"
	"github.com/Aleksandergreg/storefront/pkg/router"
	"github.com/Aleksandergreg/storefront/pkg/ws"
)

// Deps carries the stores and service clients the API needs. Everything is
// injected — no package-level singletons — so tests can assemble a full
// router around in-memory fixtures.
type Deps struct {
	Session  *stores.SessionStore
	Cart     *stores.CartStore
	Orders   *stores.OrderStore
	Wishlist *stores.WishlistStore
	Address  *stores.AddressStore

	Catalog *services.CatalogService
	Payment *services.PaymentService
	Geocode *services.GeocodeService

	Hub *ws.Hub
}

// RegisterAPI mounts the whole HTTP surface on r.
func RegisterAPI(r *router.Router, d Deps) error {
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	authController := controllers.NewAuthController(d.Session)
	cartController := controllers.NewCartController(d.Cart)
	orderController := controllers.NewOrderController(d.Orders)
	wishlistController := controllers.NewWishlistController(d.Wishlist)
	addressController := controllers.NewAddressController(d.Address)
	productController := controllers.NewProductController(d.Catalog)
	paymentController := controllers.NewPaymentController(d.Payment, d.Cart)
	locationController := controllers.NewLocationController(d.Geocode)
	wsController := controllers.NewWSController(d.Hub)

	gqlController, err := controllers.NewGraphQLController(d.Cart, d.Orders, d.Wishlist, d.Catalog)
	if err != nil {
		return err
	}

	api := r.Group("/api")

	// Public: session establishment and catalog browsing.
	api.Post("/login", "auth.login", authController.Login)
	api.Post("/signup", "auth.signup", authController.Signup)
	api.Post("/biometric-login", "auth.biometric", authController.BiometricLogin)
	api.Get("/biometrics", "auth.biometrics", authController.Biometrics)
	api.Put("/biometrics", "auth.biometrics.set", authController.SetBiometrics)
	api.Get("/products", "products.list", productController.List)
	api.Get("/products/{id}", "products.get", productController.Get)
	api.Get("/location/reverse", "location.reverse", locationController.Reverse)

	// Identity: a JWT or an anonymous device id — guests keep carts too.
	identified := api.Group("", middleware.Identity)
	identified.Get("/cart", "cart.get", cartController.Get)
	identified.Post("/cart", "cart.add", cartController.AddItem)
	identified.Delete("/cart/{id}", "cart.remove", cartController.RemoveItem)
	identified.Delete("/cart", "cart.clear", cartController.Clear)
	identified.Post("/graphql", "graphql", gqlController.Query)
	identified.Get("/ws", "ws", wsController.Connect)

	// Authenticated: everything keyed to an account.
	protected := api.Group("", middleware.Auth)
	protected.Post("/logout", "auth.logout", authController.Logout)
	protected.Get("/orders", "orders.list", orderController.List)
	protected.Post("/orders", "orders.complete", orderController.Complete)
	protected.Get("/orders/version", "orders.version", orderController.Version)
	protected.Get("/wishlist", "wishlist.items", wishlistController.Items)
	protected.Post("/wishlist", "wishlist.add", wishlistController.Add)
	protected.Delete("/wishlist/{id}", "wishlist.remove", wishlistController.Remove)
	protected.Put("/wishlist/order", "wishlist.reorder", wishlistController.Reorder)
	protected.Get("/address", "address.get", addressController.Get)
	protected.Put("/address", "address.save", addressController.Save)
	protected.Delete("/address", "address.clear", addressController.Clear)
	protected.Post("/payment/sheet", "payment.sheet", paymentController.Sheet)

	return nil
}
