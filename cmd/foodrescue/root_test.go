package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/gamification"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rulesPath, jsonOutput = "", false
	predictStorage, predictPrepared, predictAt = string(expiry.RoomTemp), "", ""
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
	}

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	for _, sub := range []string{"predict", "score", "rules"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestPredictCommand(t *testing.T) {
	out, err := run(t, "predict", "Cooked Meal",
		"--storage", "Refrigerated",
		"--prepared", "2026-03-13T22:00:00Z",
		"--at", "2026-03-14T18:00:00Z",
		"--json")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	var est expiry.Estimate
	if err := json.Unmarshal([]byte(out), &est); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if est.RemainingHours != 4 || est.Urgency != expiry.Medium {
		t.Errorf("estimate = %+v", est)
	}

	out, err = run(t, "predict", "Meats & Poultry", "--prepared", "2026-03-14T17:00:00Z", "--at", "2026-03-14T18:00:00Z")
	if err != nil {
		t.Fatalf("predict text: %v", err)
	}
	if !strings.Contains(out, "3.0h remaining, urgency HIGH") {
		t.Errorf("text output = %q", out)
	}

	if _, err := run(t, "predict", "Cooked Meal", "--prepared", "last night"); err == nil {
		t.Error("expected error for malformed --prepared")
	}
}

func TestScoreCommand(t *testing.T) {
	out, err := run(t, "score", "45", "--json")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var st gamification.State
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if st.BadgeCount != 3 || st.PointsToNextBadge != 15 {
		t.Errorf("state = %+v", st)
	}

	if _, err := run(t, "score", "-5"); err == nil {
		t.Error("expected error for negative points")
	}
	if _, err := run(t, "score", "many"); err == nil {
		t.Error("expected error for non-integer points")
	}
}

func TestRulesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	body := "badge_cost = 20\n\n[expiry.storage_factors]\n\"Room Temp\" = 1.0\n\"Cellar\" = 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	out, err := run(t, "--rules", path, "rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	for _, want := range []string{"Cooked Meal", "Cellar", "badge every 20 points"} {
		if !strings.Contains(out, want) {
			t.Errorf("rules output missing %q:\n%s", want, out)
		}
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("badge_cost = 0\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if _, err := run(t, "--rules", bad, "rules"); err == nil {
		t.Error("expected error for invalid rules file")
	}
}
