// Package classify assigns a health category to free text by keyword frequency.
package classify

import (
	"strings"

	"github.com/ppiankov/claimwatch/internal/model"
)

const (
	// ReferenceTrust is the baseline trust returned by the reference classifier
	ReferenceTrust = 70.0
	// BasicTrust is the baseline trust returned by the basic variant
	BasicTrust = 50.0
)

// Result is the outcome of classifying a text
type Result struct {
	Category      model.Category `json:"category"`
	BaselineTrust float64        `json:"baseline_trust_score"`
	Matches       int            `json:"matches"` // Keyword hits for the winning category
}

type rule struct {
	category model.Category
	keywords []string
}

// keywordTable is ordered: ties resolve to the earlier category.
var keywordTable = []rule{
	{model.CategoryNutrition, []string{"vitamin", "protein", "diet", "food", "supplement", "meal", "eating", "nutrient"}},
	{model.CategoryMedicine, []string{"treatment", "cure", "medicine", "drug", "health", "disease", "symptoms", "medical"}},
	{model.CategoryMentalHealth, []string{"stress", "anxiety", "depression", "mental", "therapy", "mindfulness", "psychological"}},
	{model.CategoryFitness, []string{"exercise", "workout", "training", "muscle", "cardio", "strength", "fitness", "gym"}},
	{model.CategoryAlternativeMedicine, []string{"natural", "herbal", "holistic", "alternative", "traditional", "healing"}},
}

// Classifier is a keyword-frequency category assigner with a fixed trust baseline
type Classifier struct {
	baseline float64
}

// New creates a classifier that reports the given baseline trust
func New(baseline float64) *Classifier {
	return &Classifier{baseline: baseline}
}

// NewReference creates the reference classifier (baseline 70)
func NewReference() *Classifier {
	return New(ReferenceTrust)
}

// NewBasic creates the basic classifier (baseline 50)
func NewBasic() *Classifier {
	return New(BasicTrust)
}

// Baseline returns the constant trust score this classifier reports
func (c *Classifier) Baseline() float64 {
	return c.baseline
}

// Classify assigns a category to text. Keywords match as substrings of the
// lowercased text, so "vitamins" counts for "vitamin". Text with no hits is Unknown.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)

	best := model.CategoryUnknown
	bestCount := 0
	for _, r := range keywordTable {
		count := 0
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best = r.category
			bestCount = count
		}
	}

	return Result{
		Category:      best,
		BaselineTrust: c.baseline,
		Matches:       bestCount,
	}
}

// Keywords returns a copy of the keyword list for a category
func Keywords(category model.Category) []string {
	for _, r := range keywordTable {
		if r.category == category {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}
