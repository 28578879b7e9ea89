package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag      string
	adminKeyFlag string
	rootCmd      = &cobra.Command{
		Use:   "vibectl",
		Short: "CLI client for the vibe service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Vibe service base URL")
	rootCmd.PersistentFlags().StringVarP(&adminKeyFlag, "admin-key", "k", "", "Admin API key for moderation commands")

	// discover subcommand
	var lat, lon float64
	var query string
	var radius int
	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Fused venue discovery around a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/venues?", apiFlag)
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				url += fmt.Sprintf("lat=%v&lon=%v&", lat, lon)
			}
			if query != "" {
				url += fmt.Sprintf("query=%s&", query)
			}
			if radius > 0 {
				url += fmt.Sprintf("radius=%d&", radius)
			}
			data, err := doGet(url[:len(url)-1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	discoverCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	discoverCmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	discoverCmd.Flags().StringVarP(&query, "query", "q", "", "Free-text search")
	discoverCmd.Flags().IntVarP(&radius, "radius", "r", 0, "Search radius in meters")
	rootCmd.AddCommand(discoverCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
