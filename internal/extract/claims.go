package extract

import (
	"iter"
	"regexp"
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
)

// Template is a named claim pattern
type Template struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultTemplates returns the built-in claim templates, in match order
func DefaultTemplates() []Template {
	return []Template{
		{
			Name:    "trigger",
			Pattern: regexp.MustCompile(`(?i)\b(studies show|research indicates|according to|proven to|can|may|will)\b .+`),
		},
		{
			Name:    "causal",
			Pattern: regexp.MustCompile(`(?i).+ (increases|decreases|improves|reduces|boosts|helps) .+`),
		},
		{
			Name:    "evaluative",
			Pattern: regexp.MustCompile(`(?i).+ is (good|bad|beneficial|harmful) for .+`),
		},
	}
}

const (
	minSentenceLen = 8
	maxSentenceLen = 1000
)

// ClaimExtractor finds claim-like sentences in text blocks
type ClaimExtractor struct {
	templates []Template
}

// NewClaimExtractor creates an extractor with the default templates
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{templates: DefaultTemplates()}
}

// NewClaimExtractorWithTemplates creates an extractor with custom templates
func NewClaimExtractorWithTemplates(templates []Template) *ClaimExtractor {
	return &ClaimExtractor{templates: templates}
}

// Extract returns a lazy sequence of candidates over blocks. Each block is handled
// independently; within a block candidates come in template order, then position.
// The sequence may be ranged over any number of times. Overlapping matches from
// different templates are all emitted.
func (e *ClaimExtractor) Extract(blocks []string) iter.Seq[model.Candidate] {
	return func(yield func(model.Candidate) bool) {
		for bi, block := range blocks {
			sentences := splitSentences(VisibleText(block))
			for _, tpl := range e.templates {
				for _, sentence := range sentences {
					for _, m := range tpl.Pattern.FindAllString(sentence, -1) {
						text := cleanMatch(m)
						if text == "" {
							continue
						}
						c := model.Candidate{
							Text:    text,
							Pattern: tpl.Name,
							Block:   bi,
							Source:  block,
						}
						if !yield(c) {
							return
						}
					}
				}
			}
		}
	}
}

// Collect drains a candidate sequence into a slice
func Collect(seq iter.Seq[model.Candidate]) []model.Candidate {
	var out []model.Candidate
	for c := range seq {
		out = append(out, c)
	}
	return out
}

// Texts returns the candidate texts in order
func Texts(candidates []model.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Text
	}
	return out
}

func cleanMatch(m string) string {
	return strings.TrimRight(strings.TrimSpace(m), " .!?;")
}

// splitSentences splits text into sentences on terminators and line breaks
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if len(sentence) >= minSentenceLen && len(sentence) <= maxSentenceLen {
			sentences = append(sentences, sentence)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}

		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Only split when followed by whitespace, so "4.5%" and "e.g." mid-word stay intact
			if i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()

	return sentences
}
