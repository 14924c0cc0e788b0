package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jredh-dev/foodrescue/internal/expiry"
)

var (
	predictStorage  string
	predictPrepared string
	predictAt       string
)

var predictCmd = &cobra.Command{
	Use:   "predict <food type>",
	Short: "Estimate remaining shelf life for a donation",
	Example: `  foodrescue predict "Cooked Meal" --storage Refrigerated --prepared 2026-03-14T09:30
  foodrescue predict "Bakery Items" --prepared 2026-03-14T09:30:00+05:30 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules()
		if err != nil {
			return err
		}

		now := time.Now()
		if predictAt != "" {
			if now, err = expiry.ParseTime(predictAt, nil); err != nil {
				return fmt.Errorf("--at: %w", err)
			}
		}
		prepared := now
		if predictPrepared != "" {
			if prepared, err = expiry.ParseTime(predictPrepared, nil); err != nil {
				return fmt.Errorf("--prepared: %w", err)
			}
		}

		est := expiry.PredictAt(rs.Expiry, now, args[0], expiry.StorageCondition(predictStorage), prepared)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), est)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s): %.1fh remaining, urgency %s\n", args[0], predictStorage, est.RemainingHours, est.Urgency)
		for _, e := range est.Explanations {
			fmt.Fprintf(out, "  %-22s %s\n", e.Factor, e.Impact)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictStorage, "storage", string(expiry.RoomTemp), "Storage condition (Room Temp, Refrigerated, Frozen)")
	predictCmd.Flags().StringVar(&predictPrepared, "prepared", "", "Preparation time, RFC 3339 or YYYY-MM-DDTHH:MM (default: now)")
	predictCmd.Flags().StringVar(&predictAt, "at", "", "Evaluate as of this time instead of now")
	rootCmd.AddCommand(predictCmd)
}
