package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/claimwatch/internal/report"
	"github.com/spf13/cobra"
)

var (
	analyzeSources []string
	analyzeTimeout time.Duration
	analyzeJSON    bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <claim>",
	Short: "Score a single health claim",
	Long: `Analyze scores one claim: AI (or keyword) classification, evidence from
the journal sources, trust score and verification status.

Example:
  claimwatch analyze "Vitamin D improves bone health"
  claimwatch analyze "Green tea boosts metabolism" --sources pubmed,crossref --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVar(&analyzeSources, "sources", nil, "evidence sources to query (default: all enabled)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall timeout")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	scored, err := a.pipeline.AnalyzeWithSources(ctx, claim, analyzeSources)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if analyzeJSON {
		rep := report.New("Claim analysis", []report.Entry{{Claim: scored.Claim, Result: scored}})
		return report.NewRenderer().WriteJSON(os.Stdout, rep)
	}

	v := scored.Verdict
	fmt.Printf("Claim:      %s\n", scored.Claim)
	fmt.Printf("Category:   %s\n", v.Category)
	fmt.Printf("Status:     %s\n", v.VerificationStatus)
	fmt.Printf("Trust:      %.0f/100\n", v.TrustScore)
	fmt.Printf("Evidence:   %s (validation score %.0f)\n", scored.Validation.ConsensusStrength, scored.Validation.ValidationScore)
	for _, ev := range v.ScientificEvidence {
		mark := "✗"
		if ev.SupportsClaim {
			mark = "✓"
		}
		fmt.Printf("  %s [%s] %s\n", mark, ev.SourceName, ev.Title)
	}
	if scored.Fallback {
		fmt.Fprintf(os.Stderr, "\n⚠ AI scoring unavailable; category from keyword classifier\n")
	}
	return nil
}
