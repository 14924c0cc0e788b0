package main

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/gamification"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rules after loading and validating the rules file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"base_hours":      rs.Expiry.BaseHours,
				"default_hours":   rs.Expiry.DefaultBaseHours,
				"storage_factors": rs.Expiry.StorageFactors,
				"default_factor":  rs.Expiry.DefaultFactor,
				"high_below":      rs.Expiry.Thresholds.High,
				"medium_below":    rs.Expiry.Thresholds.Medium,
				"levels":          rs.Levels,
				"badge_cost":      rs.BadgeCost,
				"points":          rs.Points,
			})
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FOOD TYPE\tBASE HOURS")
		for _, ft := range rs.Expiry.FoodTypes() {
			fmt.Fprintf(tw, "%s\t%d\n", ft, rs.Expiry.BaseHours[ft])
		}
		fmt.Fprintf(tw, "(other)\t%d\n\n", rs.Expiry.DefaultBaseHours)

		fmt.Fprintln(tw, "STORAGE\tFACTOR")
		for _, sc := range storageOrder(rs.Expiry.StorageFactors) {
			fmt.Fprintf(tw, "%s\t%s\n", sc, strconv.FormatFloat(rs.Expiry.StorageFactors[sc], 'f', -1, 64))
		}
		fmt.Fprintf(tw, "(other)\t%s\n\n", strconv.FormatFloat(rs.Expiry.DefaultFactor, 'f', -1, 64))

		fmt.Fprintf(tw, "HIGH below %gh, MEDIUM below %gh, otherwise LOW\n\n", rs.Expiry.Thresholds.High, rs.Expiry.Thresholds.Medium)

		fmt.Fprintln(tw, "LEVEL\tPOINTS")
		for _, l := range rs.Levels {
			upper := "+"
			if l.Max != gamification.Unbounded {
				upper = "-" + strconv.Itoa(l.Max)
			}
			fmt.Fprintf(tw, "%s\t%d%s\n", l.Name, l.Min, upper)
		}
		fmt.Fprintf(tw, "\nbadge every %d points; provider +%d per donation, NGO +%d per pickup\n",
			rs.BadgeCost, rs.Points.ProviderPerDonation, rs.Points.NGOPerPickup)
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

// storageOrder lists the built-in conditions first, then any others sorted.
func storageOrder(factors map[expiry.StorageCondition]float64) []expiry.StorageCondition {
	var out, extra []expiry.StorageCondition
	for _, sc := range []expiry.StorageCondition{expiry.RoomTemp, expiry.Refrigerated, expiry.Frozen} {
		if _, ok := factors[sc]; ok {
			out = append(out, sc)
		}
	}
	for sc := range factors {
		if sc != expiry.RoomTemp && sc != expiry.Refrigerated && sc != expiry.Frozen {
			extra = append(extra, sc)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
