// Package main is the DEI tracker web gateway: it serves page data and the
// live companies listing, and relays browser API calls to the backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dei-web",
	Short: "DEI tracker web gateway",
	Long:  "Serves page data for the DEI tracker frontend and proxies its API calls to the backend with the server-side API key.",
}

func main() {
	// .env.local wins over .env; godotenv never overrides variables already set.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
