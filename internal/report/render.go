package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingfrederik/docx"
	"github.com/ppiankov/claimwatch/internal/model"
)

// Renderer writes reports to files and terminals
type Renderer struct {
	IncludeFooter bool
}

// NewRenderer creates a renderer; the footer is on by default
func NewRenderer() *Renderer {
	return &Renderer{IncludeFooter: true}
}

const footer = "Generated by claimwatch. Trust scores summarize available evidence; they are not medical advice."

// WriteJSON encodes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(rep *Report, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, rep) })
}

// Markdown returns the report as a Markdown document
func (r *Renderer) Markdown(rep *Report) string {
	var b strings.Builder
	s := rep.Summary

	fmt.Fprintf(&b, "# %s\n\n", rep.Title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", rep.GeneratedAt.Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Claims analyzed: %d (%d failed)\n", s.Total, s.Failed)
	fmt.Fprintf(&b, "- Average trust score: %.1f\n", s.AvgTrustScore)
	for _, st := range []model.VerificationStatus{model.StatusVerified, model.StatusQuestionable, model.StatusDebunked} {
		fmt.Fprintf(&b, "- %s: %d\n", st, s.Statuses[st])
	}
	if s.Fallbacks > 0 {
		fmt.Fprintf(&b, "- Scored without the AI service: %d\n", s.Fallbacks)
	}
	b.WriteString("\n## Claims\n\n")
	b.WriteString("| # | Claim | Category | Status | Trust | Evidence |\n")
	b.WriteString("|---|-------|----------|--------|-------|----------|\n")
	for i, e := range rep.Entries {
		if e.Failed() {
			fmt.Fprintf(&b, "| %d | %s | - | failed | - | %s |\n", i+1, cell(e.Claim), cell(e.Error))
			continue
		}
		v := e.Result.Verdict
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %.0f | %s |\n",
			i+1, cell(e.Claim), v.Category, v.VerificationStatus, v.TrustScore, consensusLabel(e.Result))
	}

	for i, e := range rep.Entries {
		if e.Failed() || len(e.Result.Verdict.ScientificEvidence) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %d. %s\n\n", i+1, e.Claim)
		for _, ev := range e.Result.Verdict.ScientificEvidence {
			b.WriteString("- " + evidenceLine(ev) + "\n")
		}
	}

	if r.IncludeFooter {
		b.WriteString("\n---\n\n" + footer + "\n")
	}
	return b.String()
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(rep *Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(rep))
		return err
	})
}

// RenderDocx writes the report as a Word document to path
func (r *Renderer) RenderDocx(rep *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := docx.NewFile()
	f.AddParagraph().AddText(rep.Title).Size(20)
	f.AddParagraph().AddText("Generated " + rep.GeneratedAt.Format("2006-01-02 15:04 UTC")).Size(10).Color("808080")
	f.AddParagraph()

	s := rep.Summary
	f.AddParagraph().AddText(fmt.Sprintf("Claims analyzed: %d (%d failed). Average trust score: %.1f.", s.Total, s.Failed, s.AvgTrustScore))
	f.AddParagraph().AddText(fmt.Sprintf("Verified: %d  Questionable: %d  Debunked: %d",
		s.Statuses[model.StatusVerified], s.Statuses[model.StatusQuestionable], s.Statuses[model.StatusDebunked]))
	f.AddParagraph()

	for i, e := range rep.Entries {
		f.AddParagraph().AddText(fmt.Sprintf("%d. %s", i+1, e.Claim)).Size(14)
		if e.Failed() {
			f.AddParagraph().AddText("Analysis failed: " + e.Error).Color("C00000")
			f.AddParagraph()
			continue
		}
		v := e.Result.Verdict
		f.AddParagraph().AddText(fmt.Sprintf("%s | %s | trust %.0f | %s",
			v.Category, v.VerificationStatus, v.TrustScore, consensusLabel(e.Result))).Color(statusColor(v.VerificationStatus))
		for _, ev := range v.ScientificEvidence {
			f.AddParagraph().AddText("- " + evidenceLine(ev)).Size(10)
		}
		f.AddParagraph()
	}

	if r.IncludeFooter {
		f.AddParagraph().AddText(footer).Size(8).Color("808080")
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

// RenderSummary prints a short human summary
func (r *Renderer) RenderSummary(w io.Writer, rep *Report) {
	s := rep.Summary
	fmt.Fprintf(w, "%s\n", rep.Title)
	fmt.Fprintf(w, "  claims: %d  failed: %d  avg trust: %.1f\n", s.Total, s.Failed, s.AvgTrustScore)
	fmt.Fprintf(w, "  verified: %d  questionable: %d  debunked: %d\n",
		s.Statuses[model.StatusVerified], s.Statuses[model.StatusQuestionable], s.Statuses[model.StatusDebunked])
	if s.Fallbacks > 0 {
		fmt.Fprintf(w, "  ⚠ %d claim(s) scored by the keyword classifier (AI service unavailable)\n", s.Fallbacks)
	}
}

func consensusLabel(sc *model.ScoredClaim) string {
	if sc.Validation.ConsensusStrength == "" {
		return string(model.ConsensusInsufficient)
	}
	return fmt.Sprintf("%s (%d studies)", sc.Validation.ConsensusStrength, len(sc.Validation.SupportingEvidence))
}

func evidenceLine(ev model.EvidenceRecord) string {
	title := ev.Title
	if title == "" {
		title = "untitled"
	}
	stance := "does not support"
	if ev.SupportsClaim {
		stance = "supports"
	}
	line := fmt.Sprintf("[%s] %s (%s)", ev.SourceName, title, stance)
	if ev.URL != "" {
		line += " " + ev.URL
	}
	return line
}

func statusColor(s model.VerificationStatus) string {
	switch s {
	case model.StatusVerified:
		return "2E7D32"
	case model.StatusDebunked:
		return "C00000"
	default:
		return "B26A00"
	}
}

// cell escapes a value for a Markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
