package evidence

import (
	"math"
	"strings"
	"unicode"

	"github.com/ppiankov/claimwatch/internal/model"
)

// Phrases in a study title that read as evidence against a claim
var contradictionTerms = []string{
	"no effect", "no significant", "not associated", "no association", "ineffective",
	"did not", "does not", "do not", "lack of", "failed to", "no evidence", "no benefit",
	"not effective", "refute", "myth", "debunk", "no difference",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "can": true, "for": true, "from": true, "has": true, "have": true, "in": true,
	"is": true, "it": true, "its": true, "may": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "this": true, "to": true, "will": true, "with": true, "your": true,
	"you": true, "our": true, "we": true, "studies": true, "show": true, "research": true,
	"indicates": true, "according": true, "proven": true, "good": true, "bad": true,
	"very": true, "more": true, "most": true, "than": true, "every": true, "all": true,
}

const maxQueryTerms = 6

// Terms returns the content words of a claim, in order, without duplicates
func Terms(claim string) []string {
	fields := strings.FieldsFunc(strings.ToLower(claim), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	seen := make(map[string]bool)
	var terms []string
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if len(f) < 3 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// Query builds a search query of at most a few content words
func Query(claim string) string {
	terms := Terms(claim)
	if len(terms) > maxQueryTerms {
		terms = terms[:maxQueryTerms]
	}
	return strings.Join(terms, " ")
}

// Supports reports whether a study title reads as supporting the claim: it must share
// at least one content word with the claim and carry no contradiction phrase.
func Supports(claim, title string) bool {
	lowerTitle := strings.ToLower(title)
	for _, term := range contradictionTerms {
		if strings.Contains(lowerTitle, term) {
			return false
		}
	}

	titleTerms := make(map[string]bool)
	for _, t := range Terms(title) {
		titleTerms[t] = true
	}
	for _, t := range Terms(claim) {
		if titleTerms[t] {
			return true
		}
	}
	return false
}

// Confidence scores a source's answer from its total hit count and the share of
// returned studies that support the claim. No studies yields a low fixed confidence.
func Confidence(totalHits int, studies []model.EvidenceRecord) float64 {
	if len(studies) == 0 {
		return 25
	}

	supporting := 0
	for _, s := range studies {
		if s.SupportsClaim {
			supporting++
		}
	}

	volume := math.Min(1, math.Log10(float64(max(totalHits, len(studies)))+1)/3)
	share := float64(supporting) / float64(len(studies))
	return model.ClampScore(40 + 30*volume + 30*share)
}

// majoritySupports reports whether more than half of the studies support the claim
func majoritySupports(studies []model.EvidenceRecord) bool {
	supporting := 0
	for _, s := range studies {
		if s.SupportsClaim {
			supporting++
		}
	}
	return supporting*2 > len(studies)
}
