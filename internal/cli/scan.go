package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/report"
	"github.com/ppiankov/claimwatch/internal/social"
	"github.com/spf13/cobra"
)

var (
	scanTimeout   time.Duration
	scanLimit     int
	scanMinTrust  float64
	scanCategory  []string
	scanTextFiles []string
	scanOut       string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <platform> <handle>",
	Short: "Extract and score claims from an account or feed",
	Long: `Scan fetches recent content from a social platform (twitter, youtube, feed),
extracts claim-like sentences, removes near-duplicates and scores the rest.
With --text the content is read from local files instead.

Example:
  claimwatch scan twitter @drhealth
  claimwatch scan youtube UCxxxxxxxxxxxxxxxxxxxxxx --min-trust 60
  claimwatch scan feed https://example.com/podcast.rss --category Nutrition
  claimwatch scan --text transcript.txt`,
	Args: cobra.MaximumNArgs(2),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 10*time.Minute, "overall timeout")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "posts to fetch (default from social.limit)")
	scanCmd.Flags().Float64Var(&scanMinTrust, "min-trust", 0, "minimum trust score to report")
	scanCmd.Flags().StringSliceVar(&scanCategory, "category", nil, "only report these categories")
	scanCmd.Flags().StringSliceVar(&scanTextFiles, "text", nil, "read content from files instead of a platform")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "write JSON and Markdown reports with this path stem")
}

func runScan(cmd *cobra.Command, args []string) error {
	if len(scanTextFiles) == 0 && len(args) != 2 {
		return fmt.Errorf("%w: need <platform> <handle> or --text", model.ErrInvalidInput)
	}

	categories := make([]model.Category, 0, len(scanCategory))
	for _, c := range scanCategory {
		parsed := model.ParseCategory(c)
		if parsed == model.CategoryUnknown {
			return fmt.Errorf("%w: unknown category %q", model.ErrInvalidInput, c)
		}
		categories = append(categories, parsed)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scanLimit > 0 {
		cfg.Social.Limit = scanLimit
	}
	a, err := newApp(cfg, newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	texts, title, err := scanContent(ctx, a, args)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d content blocks\n", len(texts))
	}

	scored := a.pipeline.ExtractAndScore(ctx, texts, scanMinTrust, categories)
	rep := report.FromScored(title, scored)
	renderer := report.NewRenderer()

	if scanOut != "" {
		if err := writeReports(renderer, rep, scanOut, false); err != nil {
			return err
		}
	} else {
		fmt.Print(renderer.Markdown(rep))
	}
	renderer.RenderSummary(os.Stderr, rep)
	return nil
}

func scanContent(ctx context.Context, a *app, args []string) ([]string, string, error) {
	if len(scanTextFiles) > 0 {
		var texts []string
		for _, path := range scanTextFiles {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, "", fmt.Errorf("read %s: %w", path, err)
			}
			texts = append(texts, string(data))
		}
		return texts, "Claims in " + strings.Join(baseNames(scanTextFiles), ", "), nil
	}

	platform, handle := args[0], args[1]
	items, err := a.social.Gather(ctx, handle, []string{platform}, a.cfg.Social.Limit)
	if err != nil {
		return nil, "", err
	}
	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "⚠ No content fetched from %s:%s\n", platform, handle)
	}
	return social.Texts(items), fmt.Sprintf("Claims from %s:%s", platform, handle), nil
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
