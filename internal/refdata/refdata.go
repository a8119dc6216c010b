// Package refdata holds the in-memory reference tables the assignment
// engines consult: valid language codes, the language-family map, and the
// canonical English code. Loaded once per run from the spot store.
package refdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickwarner/spotlang/internal/models"
)

// Language family names.
const (
	FamilyChinese    = "Chinese"
	FamilyFilipino   = "Filipino"
	FamilySouthAsian = "SouthAsian"
	FamilyEnglish    = "English"
	FamilyVietnamese = "Vietnamese"
	FamilyKorean     = "Korean"
	FamilyJapanese   = "Japanese"
	FamilyHmong      = "Hmong"
)

// Well-known language IDs from the languages table. The family map below is
// data; adding a language is a matter of extending it.
const (
	LangEnglish    = 1
	LangMandarin   = 2
	LangCantonese  = 3
	LangTagalog    = 4
	LangHmong      = 5
	LangSouthAsian = 6
	LangVietnamese = 7
	LangKorean     = 8
	LangJapanese   = 9
)

// defaultEnglishCode is used when the languages table has no English row.
const defaultEnglishCode = "EN"

// families maps family name to member language IDs.
var families = map[string][]int{
	FamilyChinese:    {LangMandarin, LangCantonese},
	FamilyFilipino:   {LangTagalog},
	FamilySouthAsian: {LangSouthAsian},
	FamilyEnglish:    {LangEnglish},
	FamilyVietnamese: {LangVietnamese},
	FamilyKorean:     {LangKorean},
	FamilyJapanese:   {LangJapanese},
	FamilyHmong:      {LangHmong},
}

// Set is the loaded reference data.
type Set struct {
	byID        map[int]models.Language
	byCode      map[string]models.Language // canonical upper-case code
	familyOf    map[int]string
	englishCode string
}

// Load reads the languages table and builds the lookup set. An empty
// languages table is a configuration failure: nothing can be assigned
// without it.
func Load(ctx context.Context, store models.SpotStore) (*Set, error) {
	langs, err := store.LoadLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load languages: %w", err)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("languages table is empty")
	}
	return NewSet(langs), nil
}

// NewSet builds a Set from language rows. Exposed for tests.
func NewSet(langs []models.Language) *Set {
	s := &Set{
		byID:     make(map[int]models.Language, len(langs)),
		byCode:   make(map[string]models.Language, len(langs)),
		familyOf: make(map[int]string),
	}
	for _, l := range langs {
		code := strings.ToUpper(strings.TrimSpace(l.LanguageCode))
		l.LanguageCode = code
		s.byID[l.LanguageID] = l
		s.byCode[code] = l
	}
	for fam, ids := range families {
		for _, id := range ids {
			s.familyOf[id] = fam
		}
	}
	// English canonical code comes from the table, falling back to "EN".
	s.englishCode = defaultEnglishCode
	if l, ok := s.byID[LangEnglish]; ok {
		s.englishCode = l.LanguageCode
	} else {
		for _, l := range langs {
			if strings.EqualFold(l.LanguageName, "English") {
				s.englishCode = strings.ToUpper(l.LanguageCode)
				break
			}
		}
	}
	return s
}

// EnglishCode returns the canonical code for English.
func (s *Set) EnglishCode() string { return s.englishCode }

// IsValidCode reports whether the raw code, upper-cased, is in the
// languages table.
func (s *Set) IsValidCode(raw string) bool {
	_, ok := s.byCode[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}

// LanguageIDForCode resolves a raw code to its language ID.
func (s *Set) LanguageIDForCode(raw string) (int, bool) {
	l, ok := s.byCode[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return 0, false
	}
	return l.LanguageID, true
}

// LanguageName returns the display name for a language ID.
func (s *Set) LanguageName(id int) string {
	if l, ok := s.byID[id]; ok {
		return l.LanguageName
	}
	return fmt.Sprintf("language %d", id)
}

// FamilyOf returns the family name for a language ID, or "" if unmapped.
func (s *Set) FamilyOf(languageID int) string {
	return s.familyOf[languageID]
}

// IsChinese reports whether the language belongs to the Chinese family
// (Mandarin or Cantonese).
func (s *Set) IsChinese(languageID int) bool {
	return s.familyOf[languageID] == FamilyChinese
}

// SameFamily reports whether every language ID belongs to one family, and
// which. Unmapped languages never share a family.
func (s *Set) SameFamily(languageIDs []int) (string, bool) {
	if len(languageIDs) == 0 {
		return "", false
	}
	fam := s.familyOf[languageIDs[0]]
	if fam == "" {
		return "", false
	}
	for _, id := range languageIDs[1:] {
		if s.familyOf[id] != fam {
			return "", false
		}
	}
	return fam, true
}
