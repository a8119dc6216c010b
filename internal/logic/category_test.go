package logic

import (
	"testing"

	"github.com/patrickwarner/spotlang/internal/models"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		revenueType string
		spotType    string
		want        models.SpotCategory
	}{
		// Internal ad sales splits by spot type.
		{models.RevenueInternalAdSales, models.SpotTypeCommercial, models.CategoryLanguageRequired},
		{models.RevenueInternalAdSales, models.SpotTypeBonus, models.CategoryLanguageRequired},
		{models.RevenueInternalAdSales, models.SpotTypePackage, models.CategoryReview},
		{models.RevenueInternalAdSales, models.SpotTypeCredit, models.CategoryReview},
		{models.RevenueInternalAdSales, models.SpotTypeAvail, models.CategoryReview},
		{models.RevenueInternalAdSales, models.SpotTypeBillboard, models.CategoryReview},
		{models.RevenueInternalAdSales, "", models.CategoryReview},

		// Local is always language-required.
		{models.RevenueLocal, models.SpotTypeCommercial, models.CategoryLanguageRequired},
		{models.RevenueLocal, "", models.CategoryLanguageRequired},
		{models.RevenueLocal, models.SpotTypeService, models.CategoryLanguageRequired},

		// Other splits three ways; null spot type reviews.
		{models.RevenueOther, models.SpotTypeCommercial, models.CategoryReview},
		{models.RevenueOther, models.SpotTypeBonus, models.CategoryReview},
		{models.RevenueOther, "", models.CategoryReview},
		{models.RevenueOther, models.SpotTypeService, models.CategoryDefaultEnglish},
		{models.RevenueOther, models.SpotTypeProduced, models.CategoryDefaultEnglish},
		{models.RevenueOther, models.SpotTypeProgram, models.CategoryReview},

		// English-content revenue types regardless of spot type.
		{models.RevenueDirectResponse, models.SpotTypeCommercial, models.CategoryDefaultEnglish},
		{models.RevenueDirectResponse, "", models.CategoryDefaultEnglish},
		{models.RevenuePaidProgramming, models.SpotTypeProgram, models.CategoryDefaultEnglish},
		{models.RevenueBrandedContent, models.SpotTypeCommercial, models.CategoryDefaultEnglish},

		// Unknown combinations land in review.
		{"Mystery Revenue", models.SpotTypeCommercial, models.CategoryReview},
		{"", "", models.CategoryReview},
	}

	for _, c := range cases {
		got := Categorize(c.revenueType, c.spotType)
		if got != c.want {
			t.Errorf("Categorize(%q, %q) = %s, want %s", c.revenueType, c.spotType, got, c.want)
		}
	}
}

func TestCategorizeSpot_Nil(t *testing.T) {
	if got := CategorizeSpot(nil); got != models.CategoryReview {
		t.Errorf("CategorizeSpot(nil) = %s, want review", got)
	}
}
