package logic

import "github.com/patrickwarner/spotlang/internal/models"

// Categorize maps a spot's (revenue_type, spot_type) pair to its processing
// category. The mapping is total: anything unrecognized lands in review.
// Trade spots are filtered upstream and never reach this function.
//
// Null spot types arrive as empty strings from the importer; the mapping
// treats them as their own value where the table distinguishes them.
func Categorize(revenueType, spotType string) models.SpotCategory {
	switch revenueType {
	case models.RevenueInternalAdSales:
		switch spotType {
		case models.SpotTypeCommercial, models.SpotTypeBonus:
			return models.CategoryLanguageRequired
		case models.SpotTypePackage, models.SpotTypeCredit, models.SpotTypeAvail:
			return models.CategoryReview
		}
	case models.RevenueLocal:
		return models.CategoryLanguageRequired
	case models.RevenueOther:
		switch spotType {
		case models.SpotTypeCommercial, models.SpotTypeBonus, "":
			return models.CategoryReview
		case models.SpotTypeService, models.SpotTypeProduced:
			return models.CategoryDefaultEnglish
		}
	case models.RevenueDirectResponse, models.RevenuePaidProgramming, models.RevenueBrandedContent:
		return models.CategoryDefaultEnglish
	}
	return models.CategoryReview
}

// CategorizeSpot applies Categorize to a spot, using null-as-empty-string
// semantics for both fields.
func CategorizeSpot(spot *models.Spot) models.SpotCategory {
	if spot == nil {
		return models.CategoryReview
	}
	return Categorize(spot.RevenueType, spot.SpotType)
}
