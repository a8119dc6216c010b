package logic

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

// LanguageResolver turns a spot's raw language code into a persisted
// LanguageAssignment. Rules are evaluated in order; the first match wins.
type LanguageResolver struct {
	ref    *refdata.Set
	logger *zap.Logger
	nowFn  func() time.Time
}

// NewLanguageResolver constructs a resolver over the loaded reference data.
func NewLanguageResolver(ref *refdata.Set, logger *zap.Logger) *LanguageResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LanguageResolver{ref: ref, logger: logger, nowFn: time.Now}
}

// Resolve applies the base rule chain to a spot:
//
//  1. missing spot: English, invalid, flagged
//  2. COM/BB with a missing or undetermined code auto-defaults to English
//  3. missing code defaults to English at half confidence
//  4. the "L" sentinel is flagged undetermined
//  5. a code found in the languages table maps directly
//  6. anything else is flagged invalid, keeping the raw value for review
func (r *LanguageResolver) Resolve(spot *models.Spot) models.LanguageAssignment {
	now := r.nowFn()

	if spot == nil {
		return models.LanguageAssignment{
			LanguageCode:   r.ref.EnglishCode(),
			Status:         models.StatusInvalid,
			Confidence:     0,
			Method:         models.MethodErrorFallback,
			RequiresReview: true,
			Notes:          "spot not found",
			AssignedDate:   now,
		}
	}

	raw := strings.TrimSpace(spot.LanguageCode)

	// COM and BB spots are station-produced; an absent or undetermined code
	// means English by operational policy, not a data problem.
	if spot.SpotType == models.SpotTypeCommercial || spot.SpotType == models.SpotTypeBillboard {
		if raw == "" || strings.EqualFold(raw, models.LanguageCodeUndetermined) {
			return models.LanguageAssignment{
				SpotID:       spot.SpotID,
				LanguageCode: r.ref.EnglishCode(),
				Status:       models.StatusDetermined,
				Confidence:   1,
				Method:       models.MethodAutoDefaultComBB,
				AssignedDate: now,
			}
		}
	}

	if raw == "" {
		return models.LanguageAssignment{
			SpotID:       spot.SpotID,
			LanguageCode: r.ref.EnglishCode(),
			Status:       models.StatusDefault,
			Confidence:   0.5,
			Method:       models.MethodDefaultEnglish,
			AssignedDate: now,
		}
	}

	if strings.EqualFold(raw, models.LanguageCodeUndetermined) {
		return models.LanguageAssignment{
			SpotID:         spot.SpotID,
			LanguageCode:   models.LanguageCodeUndetermined,
			Status:         models.StatusUndetermined,
			Confidence:     0,
			Method:         models.MethodUndeterminedFlagged,
			RequiresReview: true,
			AssignedDate:   now,
		}
	}

	if r.ref.IsValidCode(raw) {
		return models.LanguageAssignment{
			SpotID:       spot.SpotID,
			LanguageCode: strings.ToUpper(raw),
			Status:       models.StatusDetermined,
			Confidence:   1,
			Method:       models.MethodDirectMapping,
			AssignedDate: now,
		}
	}

	r.logger.Debug("invalid language code on spot",
		zap.Int("spot_id", spot.SpotID),
		zap.String("language_code", raw))
	return models.LanguageAssignment{
		SpotID:         spot.SpotID,
		LanguageCode:   raw,
		Status:         models.StatusInvalid,
		Confidence:     0,
		Method:         models.MethodInvalidCodeFlagged,
		RequiresReview: true,
		Notes:          fmt.Sprintf("language code %q not in languages table", raw),
		AssignedDate:   now,
	}
}

// ResolveForCategory resolves a spot's language code under its processing
// category. DEFAULT_ENGLISH bypasses the rule chain entirely; REVIEW
// generalizes any review flag the base chain did not already explain.
func (r *LanguageResolver) ResolveForCategory(spot *models.Spot, category models.SpotCategory) models.LanguageAssignment {
	switch category {
	case models.CategoryDefaultEnglish:
		a := models.LanguageAssignment{
			LanguageCode: r.ref.EnglishCode(),
			Status:       models.StatusDetermined,
			Confidence:   1,
			Method:       models.MethodBusinessDefaultEnglish,
			AssignedDate: r.nowFn(),
		}
		if spot != nil {
			a.SpotID = spot.SpotID
		}
		return a

	case models.CategoryReview:
		a := r.Resolve(spot)
		if a.RequiresReview && a.Status != models.StatusUndetermined && a.Status != models.StatusInvalid {
			a.LanguageCode = r.ref.EnglishCode()
			a.Status = models.StatusDefault
			a.Confidence = 0.5
			a.Method = models.MethodBusinessReviewRequired
			a.RequiresReview = true
		}
		return a

	default:
		return r.Resolve(spot)
	}
}
