package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jredh-dev/foodrescue/internal/rules"
)

var (
	rulesPath  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "foodrescue",
	Short: "foodrescue checks expiry estimates and impact scores from your terminal",
	Long: "foodrescue runs the same expiry predictor and gamification rules as the dashboard API, " +
		"against the built-in tables or a rules file.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", os.Getenv("RULES_PATH"), "Path to a TOML rules file (default: built-in rules)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
}

func loadRules() (*rules.Rules, error) {
	return rules.Load(rulesPath)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
