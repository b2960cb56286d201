// Package localize resolves user-facing strings from YAML translation
// tables.
//
// A Bundle holds tables for several languages. Each YAML file covers one
// language and any number of named tables:
//
//	language: de
//	tables:
//	  Localizable:
//	    "observer %d cancelled": "Beobachter %d abgemeldet"
//
// A Localizer is obtained from a Bundle for a list of preferred languages
// (BCP 47 strings, as found in LANG or Accept-Language). Lookups that find
// no translation fall back to the bundle's fallback language and then to
// the key itself, so the key doubles as the untranslated text.
package localize
