package classify

import (
	"testing"

	"github.com/ppiankov/claimwatch/internal/model"
)

func TestClassifier_Categories(t *testing.T) {
	c := NewReference()

	tests := []struct {
		text     string
		expected model.Category
	}{
		{"workout", model.CategoryFitness},
		{"Take vitamins with every meal", model.CategoryNutrition},
		{"This drug is a cure for the disease", model.CategoryMedicine},
		{"Mindfulness lowers stress and anxiety", model.CategoryMentalHealth},
		{"Herbal remedies are a natural healing path", model.CategoryAlternativeMedicine},
		{"The weather is nice today", model.CategoryUnknown},
		{"", model.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Category != tt.expected {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got.Category, tt.expected)
			}
		})
	}
}

func TestClassifier_SubstringMatching(t *testing.T) {
	c := NewReference()

	// "vitamins" contains "vitamin", "supplements" contains "supplement"
	got := c.Classify("VITAMINS and Supplements")
	if got.Category != model.CategoryNutrition {
		t.Errorf("Expected Nutrition, got %s", got.Category)
	}
	if got.Matches != 2 {
		t.Errorf("Expected 2 matches, got %d", got.Matches)
	}
}

func TestClassifier_TieBreaksToFirstDeclared(t *testing.T) {
	c := NewReference()

	// One Nutrition hit (diet), one Fitness hit (gym)
	got := c.Classify("diet and gym")
	if got.Category != model.CategoryNutrition {
		t.Errorf("Expected tie to resolve to Nutrition, got %s", got.Category)
	}

	// One Medicine hit (drug), one Mental Health hit (therapy)
	got = c.Classify("therapy or drug")
	if got.Category != model.CategoryMedicine {
		t.Errorf("Expected tie to resolve to Medicine, got %s", got.Category)
	}
}

func TestClassifier_RepeatedKeywordCountsOnce(t *testing.T) {
	c := NewReference()

	// Nutrition: "diet" only (repeated). Fitness: "exercise" and "gym".
	got := c.Classify("diet diet diet diet exercise gym")
	if got.Category != model.CategoryFitness {
		t.Errorf("Expected Fitness, got %s", got.Category)
	}
}

func TestClassifier_Baselines(t *testing.T) {
	if got := NewReference().Classify("workout").BaselineTrust; got != 70 {
		t.Errorf("Expected reference baseline 70, got %v", got)
	}
	if got := NewBasic().Classify("workout").BaselineTrust; got != 50 {
		t.Errorf("Expected basic baseline 50, got %v", got)
	}
	if got := NewBasic().Classify("nothing relevant").BaselineTrust; got != 50 {
		t.Errorf("Expected baseline independent of matches, got %v", got)
	}
}

func TestKeywords(t *testing.T) {
	kws := Keywords(model.CategoryFitness)
	if len(kws) == 0 {
		t.Fatal("Expected fitness keywords")
	}

	// Mutating the copy must not affect the table
	kws[0] = "mutated"
	if Keywords(model.CategoryFitness)[0] == "mutated" {
		t.Error("Keywords returned the shared table")
	}

	if Keywords(model.CategoryUnknown) != nil {
		t.Error("Expected nil keywords for Unknown")
	}
}
