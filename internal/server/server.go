// Package server boots the storefront: config, logging sinks, the KV
// store (optionally wrapped in the write-behind buffer), the state stores,
// service clients, the HTTP and gRPC servers and the websocket hub.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aleksandergreg/storefront/app/routes"
	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/app/stores"
	"github.com/Aleksandergreg/storefront/config"
	grpcserver "github.com/Aleksandergreg/storefront/pkg/grpc"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/logger"
	"github.com/Aleksandergreg/storefront/pkg/router"
	"github.com/Aleksandergreg/storefront/pkg/ws"
)

// Start boots everything and blocks until SIGINT/SIGTERM, then shuts down
// gracefully: HTTP first, then gRPC, then the KV store (which flushes any
// buffered writes).
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	// Optional MongoDB log sink, fanned out next to the stdout handler.
	var mongoHandler *logger.MongoHandler
	if uri := config.MongoURI(); uri != "" {
		mh, err := logger.NewMongoHandler(uri, config.MongoDatabase(), "logs")
		if err != nil {
			return fmt.Errorf("server: mongo log sink: %w", err)
		}
		mongoHandler = mh
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mh))
	}

	kv, err := kvstore.Open()
	if err != nil {
		return fmt.Errorf("server: open kv store: %w", err)
	}
	if config.KVWriteBehind() {
		kv = kvstore.NewWriteBehind(kv)
		logger.Info("kv write-behind buffer enabled")
	}

	cart := stores.NewCartStore(kv)
	wishlist := stores.NewWishlistStore(kv)
	address := stores.NewAddressStore(kv)
	orders := stores.NewOrderStore(kv, cart)
	session := stores.NewSessionStore(kv, wishlist, address)

	hub := ws.NewHub()
	go hub.Run()
	ws.ForwardChanges(hub)

	r := router.New()
	err = routes.RegisterAPI(r, routes.Deps{
		Session:  session,
		Cart:     cart,
		Orders:   orders,
		Wishlist: wishlist,
		Address:  address,
		Catalog:  services.NewCatalogService(config.CatalogURL(), config.CatalogAPIKey()),
		Payment:  services.NewPaymentService(config.StripeURL(), config.StripeSecretKey(), config.StripePublishableKey()),
		Geocode:  services.NewGeocodeService(config.GeocodeURL()),
		Hub:      hub,
	})
	if err != nil {
		return fmt.Errorf("server: register routes: %w", err)
	}

	grpcSrv, _, err := grpcserver.Start(config.GRPCPort(), func() bool {
		// Ready when the KV store answers a probe read.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		var probe string
		_, err := kv.Get(ctx, kvstore.GlobalKey("health_probe"), &probe)
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("server: start grpc: %w", err)
	}

	addr := ":" + config.AppPort()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront API listening", "addr", addr, "env", config.AppEnv(), "kv_driver", config.KVDriver())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: http: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}

	grpcserver.Stop(grpcSrv)

	// Closing the KV store drains the write-behind queue, so no accepted
	// mutation is lost to a clean shutdown.
	if err := kv.Close(); err != nil {
		logger.Error("kv close", "error", err)
	}

	if mongoHandler != nil {
		mongoHandler.Close()
	}

	logger.Info("shutdown complete")
	return nil
}
