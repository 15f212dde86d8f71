package record

import (
	"golang.org/x/text/language"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// Translated is a record viewed in one of its languages.
type Translated struct {
	Record   *models.SettingRecord
	Langcode string
	Values   Values
	// Fallback is true when none of the preferred languages had a translation.
	Fallback bool
}

// ResolveTranslation picks the translation of rec that best matches the preferred
// languages, falling back to the record's default language.
func ResolveTranslation(rec *models.SettingRecord, preferred ...language.Tag) Translated {
	var (
		supported = make([]language.Tag, 0, len(rec.Translations))
		langcodes = make([]string, 0, len(rec.Translations))
	)

	// the default language goes first so the matcher falls back to it
	if tr := rec.Translation(rec.DefaultLangcode); tr != nil {
		if tag, err := language.Parse(tr.Langcode); err == nil {
			supported = append(supported, tag)
			langcodes = append(langcodes, tr.Langcode)
		}
	}

	for i := range rec.Translations {
		tr := &rec.Translations[i]
		if tr.Langcode == rec.DefaultLangcode {
			continue
		}

		tag, err := language.Parse(tr.Langcode)
		if err != nil {
			continue
		}

		supported = append(supported, tag)
		langcodes = append(langcodes, tr.Langcode)
	}

	out := Translated{
		Record:   rec,
		Langcode: rec.DefaultLangcode,
		Fallback: true,
	}

	if len(supported) > 0 && len(preferred) > 0 {
		_, idx, confidence := language.NewMatcher(supported).Match(preferred...)
		if confidence != language.No {
			out.Langcode = langcodes[idx]
			out.Fallback = false
		}
	}

	out.Values = DecodeValues(rec.Translation(out.Langcode))

	return out
}

// PreferredLanguages parses an Accept-Language header. Invalid input yields no preference.
func PreferredLanguages(acceptLanguage string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}

	return tags
}
