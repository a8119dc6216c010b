package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/spotlang/internal/models"
)

func testLanguages() []models.Language {
	return []models.Language{
		{LanguageID: LangEnglish, LanguageCode: "en", LanguageName: "English"},
		{LanguageID: LangMandarin, LanguageCode: "M", LanguageName: "Mandarin"},
		{LanguageID: LangCantonese, LanguageCode: "C", LanguageName: "Cantonese"},
		{LanguageID: LangTagalog, LanguageCode: "T", LanguageName: "Tagalog"},
	}
}

func TestNewSet_CodeLookupsAreCaseInsensitive(t *testing.T) {
	s := NewSet(testLanguages())

	assert.True(t, s.IsValidCode("m"))
	assert.True(t, s.IsValidCode(" M "))
	assert.False(t, s.IsValidCode("XX"))

	id, ok := s.LanguageIDForCode("c")
	assert.True(t, ok)
	assert.Equal(t, LangCantonese, id)
}

func TestEnglishCode_FromTable(t *testing.T) {
	s := NewSet(testLanguages())
	assert.Equal(t, "EN", s.EnglishCode())

	// Without an English row the fallback code is used.
	s = NewSet([]models.Language{{LanguageID: LangMandarin, LanguageCode: "M", LanguageName: "Mandarin"}})
	assert.Equal(t, "EN", s.EnglishCode())
}

func TestFamilies(t *testing.T) {
	s := NewSet(testLanguages())

	assert.True(t, s.IsChinese(LangMandarin))
	assert.True(t, s.IsChinese(LangCantonese))
	assert.False(t, s.IsChinese(LangTagalog))

	fam, ok := s.SameFamily([]int{LangMandarin, LangCantonese})
	assert.True(t, ok)
	assert.Equal(t, FamilyChinese, fam)

	_, ok = s.SameFamily([]int{LangMandarin, LangTagalog})
	assert.False(t, ok)

	_, ok = s.SameFamily(nil)
	assert.False(t, ok)

	// Unmapped IDs never share a family, even with themselves.
	_, ok = s.SameFamily([]int{99, 99})
	assert.False(t, ok)
}

func TestLanguageName_UnknownID(t *testing.T) {
	s := NewSet(testLanguages())
	assert.Equal(t, "Mandarin", s.LanguageName(LangMandarin))
	assert.Equal(t, "language 42", s.LanguageName(42))
}
