package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aleksandergreg/storefront/internal/server"
)

var version = "dev" // overridden at build time via -ldflags "-X main.version=…"

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Backend-for-frontend for the mobile storefront",
	Long: `storefront serves the mobile app's state layer: carts, sessions,
order history, wishlists and shipping addresses, persisted in a pluggable
key-value store, plus proxies to the catalog, payment and geocoding services.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the storefront version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("storefront", version)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
