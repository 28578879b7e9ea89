package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	reportsCmd := &cobra.Command{Use: "reports", Short: "Vibe report moderation (requires --admin-key)"}

	// list
	var flagged string
	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List vibe reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/admin/reports?limit=%d&offset=%d", apiFlag, limit, offset)
			if flagged != "" {
				if _, err := strconv.ParseBool(flagged); err != nil {
					return fmt.Errorf("--flagged must be true or false")
				}
				url += "&flagged=" + flagged
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVar(&flagged, "flagged", "", "Filter by flagged state (true/false)")
	listCmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	reportsCmd.AddCommand(listCmd)

	// flag / unflag
	flagCmd := &cobra.Command{
		Use:   "flag REPORT_ID",
		Short: "Hide a report from public listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setFlagged(args[0], true)
		},
	}
	reportsCmd.AddCommand(flagCmd)

	unflagCmd := &cobra.Command{
		Use:   "unflag REPORT_ID",
		Short: "Restore a report to public listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setFlagged(args[0], false)
		},
	}
	reportsCmd.AddCommand(unflagCmd)

	rootCmd.AddCommand(reportsCmd)
}

func setFlagged(id string, flagged bool) error {
	url := fmt.Sprintf("%s/api/admin/reports/%s", apiFlag, id)
	data, err := doPatchJSON(url, map[string]interface{}{"flagged": flagged})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}
