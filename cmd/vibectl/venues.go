package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	venuesCmd := &cobra.Command{Use: "venues", Short: "Venue operations"}

	// get
	getCmd := &cobra.Command{
		Use:   "get SLUG",
		Short: "Get a venue with its aggregate and recent reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/venues/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	venuesCmd.AddCommand(getCmd)

	// create (admin)
	var name, address, photo string
	var lat, lon float64
	var categories []string
	var featured bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a catalog venue (requires --admin-key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || address == "" {
				return fmt.Errorf("--name and --address required")
			}
			payload := map[string]interface{}{
				"name":       name,
				"address":    address,
				"lat":        lat,
				"lon":        lon,
				"isFeatured": featured,
			}
			if len(categories) > 0 {
				payload["categories"] = categories
			}
			if photo != "" {
				payload["coverPhotoUrl"] = photo
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/admin/venues", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Venue name (required)")
	createCmd.Flags().StringVar(&address, "address", "", "Street address (required)")
	createCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	createCmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	createCmd.Flags().StringSliceVar(&categories, "category", nil, "Category tag (repeatable)")
	createCmd.Flags().BoolVar(&featured, "featured", false, "Mark venue as featured")
	createCmd.Flags().StringVar(&photo, "photo", "", "Cover photo URL")
	_ = createCmd.MarkFlagRequired("name")
	venuesCmd.AddCommand(createCmd)

	rootCmd.AddCommand(venuesCmd)
}
