package otshaping

import (
	"strings"

	"github.com/go-text/typesetting/language"
	"github.com/npillmayer/otshaping/ot"
	xlanguage "golang.org/x/text/language"
)

// ScriptTags returns the OpenType script tags for a Unicode script, in order of
// preference. Indic scripts have two generations of tags (e.g. 'dev2' and 'deva'),
// and shaping should use the newer one if a font supports it.
//
// For scripts which are not a script proper (Common, Inherited and Unknown), nil is
// returned. Layout tables will then resolve to their DFLT script.
func ScriptTags(script language.Script) []ot.Tag {
	switch script {
	case 0, language.Common, language.Inherited, language.Unknown:
		return nil
	}
	var tags []ot.Tag
	if t := newScriptTag(script); t != 0 {
		if t != ot.T("mym2") { // there is no 'mym3'
			tags = append(tags, t&^0xff|'3')
		}
		tags = append(tags, t)
	}
	return append(tags, oldScriptTag(script))
}

// ScriptTagsFor finds the script of the first rune in text which belongs to a
// script proper and returns its OpenType script tags (see ScriptTags).
func ScriptTagsFor(text string) []ot.Tag {
	for _, r := range text {
		if tags := ScriptTags(language.LookupScript(r)); tags != nil {
			return tags
		}
	}
	return nil
}

func oldScriptTag(script language.Script) ot.Tag {
	switch script {
	case language.Mathematical_notation:
		return ot.T("math")
	case language.Hiragana, language.Katakana:
		return ot.T("kana")
	// spaces at the end are preserved, unlike ISO 15924
	case language.Lao:
		return ot.T("lao ")
	case language.Yi:
		return ot.T("yi  ")
	case language.Nko:
		return ot.T("nko ")
	case language.Vai:
		return ot.T("vai ")
	}
	// change first char to lowercase
	return ot.Tag(script | 0x20000000)
}

func newScriptTag(script language.Script) ot.Tag {
	switch script {
	case language.Bengali:
		return ot.T("bng2")
	case language.Devanagari:
		return ot.T("dev2")
	case language.Gujarati:
		return ot.T("gjr2")
	case language.Gurmukhi:
		return ot.T("gur2")
	case language.Kannada:
		return ot.T("knd2")
	case language.Malayalam:
		return ot.T("mlm2")
	case language.Oriya:
		return ot.T("ory2")
	case language.Tamil:
		return ot.T("tml2")
	case language.Telugu:
		return ot.T("tel2")
	case language.Myanmar:
		return ot.T("mym2")
	}
	return 0
}

// --- Languages -------------------------------------------------------------

// OpenType language system tags for ISO 639 primary language subtags.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/languagetags
var otLanguages = map[string]string{
	"ar": "ARA", "az": "AZE", "bg": "BGR", "bn": "BEN", "ca": "CAT",
	"cs": "CSY", "cy": "WEL", "da": "DAN", "de": "DEU", "el": "ELL",
	"en": "ENG", "es": "ESP", "et": "ETI", "eu": "EUQ", "fa": "FAR",
	"fi": "FIN", "fr": "FRA", "ga": "IRI", "he": "IWR", "hi": "HIN",
	"hr": "HRV", "hu": "HUN", "hy": "HYE", "id": "IND", "is": "ISL",
	"it": "ITA", "ja": "JAN", "ka": "KAT", "ko": "KOR", "la": "LAT",
	"lt": "LTH", "lv": "LVI", "mk": "MKD", "mr": "MAR", "ms": "MLY",
	"my": "BRM", "nb": "NOR", "ne": "NEP", "nl": "NLD", "nn": "NYN",
	"no": "NOR", "pl": "PLK", "pt": "PTG", "ro": "ROM", "ru": "RUS",
	"sa": "SAN", "sk": "SKY", "sl": "SLV", "sr": "SRB", "sv": "SVE",
	"ta": "TAM", "th": "THA", "tr": "TRK", "uk": "UKR", "ur": "URD",
	"vi": "VIT", "zh": "ZHS",
}

// LanguageTag returns the OpenType language system tag for a BCP 47 language tag,
// e.g. 'DEU ' for "de-AT". If the language cannot be parsed, 0 is returned, which
// selects the default language system of a script.
func LanguageTag(bcp47 string) ot.Tag {
	if bcp47 == "" {
		return 0
	}
	tag, err := xlanguage.Parse(bcp47)
	if err != nil {
		tracer().Infof("cannot parse language %q: %v", bcp47, err)
		return 0
	}
	return LanguageTagForLanguage(tag)
}

// LanguageTagForLanguage returns the OpenType language system tag for a language.
// Languages without a registered OpenType tag are mapped by their ISO 639-3 code,
// if they have one. Otherwise, and for an undetermined language, 0 is returned.
func LanguageTagForLanguage(tag xlanguage.Tag) ot.Tag {
	base, conf := tag.Base()
	if conf != xlanguage.Exact {
		return 0 // Base guesses a language for und
	}
	primary := strings.ToLower(base.String())
	if primary == "zh" {
		return chineseTag(tag)
	}
	if t, ok := otLanguages[primary]; ok {
		return ot.T(t)
	}
	if iso3 := base.ISO3(); len(iso3) == 3 {
		return ot.T(strings.ToUpper(iso3))
	}
	return 0
}

// Chinese has distinct language systems for simplified and traditional script.
func chineseTag(tag xlanguage.Tag) ot.Tag {
	if script, _ := tag.Script(); script.String() == "Hant" {
		if region, _ := tag.Region(); region.String() == "HK" {
			return ot.T("ZHH")
		}
		return ot.T("ZHT")
	}
	return ot.T("ZHS")
}
