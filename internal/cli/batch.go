package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/claimwatch/internal/report"
	"github.com/spf13/cobra"
)

var (
	batchTimeout time.Duration
	groupSize    int
	groupDelay   time.Duration
	outputDir    string
	noFooter     bool
	withDocx     bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score every claim in a file",
	Long: `Batch scores claims read from a file, one per line (blank lines and
lines starting with # are skipped). Claims run in groups: members of a group
are scored concurrently, groups run one after another with a pause in between.

Example:
  claimwatch batch claims.txt
  claimwatch batch claims.txt --group-size 5 --group-delay 2s --output-dir ./reports --docx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().IntVar(&groupSize, "group-size", 0, "claims per group (default from batch.group_size)")
	batchCmd.Flags().DurationVar(&groupDelay, "group-delay", -1, "pause between groups (default from batch.group_delay)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimwatch-reports", "output directory for reports")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in reports")
	batchCmd.Flags().BoolVar(&withDocx, "docx", false, "also write a Word report")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if groupSize > 0 {
		cfg.Batch.GroupSize = groupSize
	}
	if groupDelay >= 0 {
		cfg.Batch.GroupDelay = groupDelay
	}

	a, err := newApp(cfg, newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Group size:   %d\n", cfg.Batch.GroupSize)
	fmt.Fprintf(os.Stderr, "  Group delay:  %v\n", cfg.Batch.GroupDelay)
	fmt.Fprintf(os.Stderr, "  AI scoring:   %s\n", aiLabel(a))
	fmt.Fprintf(os.Stderr, "  Evidence:     %s\n", strings.Join(a.aggregator.Names(), ", "))
	fmt.Fprintf(os.Stderr, "\n")

	a.batch.OnGroupDone = func(done, total int) {
		fmt.Fprintf(os.Stderr, "⚙️  %d/%d claims scored\n", done, total)
	}

	results, err := a.batch.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Claim, r.Error)
			continue
		}
		v := r.Scored.Verdict
		fmt.Fprintf(os.Stderr, "✓ %s (%s, trust %.0f)\n", r.Claim, v.VerificationStatus, v.TrustScore)
	}

	rep := report.FromBatch("Batch analysis: "+filepath.Base(file), results)
	renderer := &report.Renderer{IncludeFooter: !noFooter}

	base := filepath.Join(outputDir, sanitizeFilename(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))))
	if err := writeReports(renderer, rep, base, withDocx); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr)
	renderer.RenderSummary(os.Stderr, rep)
	fmt.Fprintf(os.Stderr, "  output: %s\n", outputDir)
	return nil
}

// writeReports writes base.json and base.md, plus base.docx when requested
func writeReports(r *report.Renderer, rep *report.Report, base string, docx bool) error {
	if err := r.RenderJSON(rep, base+".json"); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if err := r.RenderMarkdown(rep, base+".md"); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if docx {
		if err := r.RenderDocx(rep, base+".docx"); err != nil {
			return fmt.Errorf("render docx: %w", err)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s.{json,md}\n", base)
	}
	return nil
}

// sanitizeFilename reduces s to a safe file name stem
func sanitizeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		s = "report"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
