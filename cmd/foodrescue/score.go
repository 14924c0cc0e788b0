package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <points>",
	Short: "Show the impact level and badges for a point total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("points must be an integer: %q", args[0])
		}
		rs, err := loadRules()
		if err != nil {
			return err
		}
		scorer, err := rs.Scorer()
		if err != nil {
			return err
		}
		st, err := scorer.Score(points)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), st)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Level:  %s\n", st.CurrentLevel.Name)
		if st.NextLevel != nil {
			fmt.Fprintf(out, "Next:   %s (%.0f%%)\n", st.NextLevel.Name, st.ProgressPercent)
		} else {
			fmt.Fprintln(out, "Next:   top level reached")
		}
		fmt.Fprintf(out, "Badges: %d (%d points to the next, one per %d)\n", st.BadgeCount, st.PointsToNextBadge, st.BadgeCost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
