package catalog

import (
	"strings"
)

type LocaleKind uint8

const (
	// LocaleUnresolved is the zero value; Resolve has not run yet.
	LocaleUnresolved LocaleKind = iota
	LocaleBase
	LocaleRegional
	LocaleOther
)

// Locale describes how a character is voiced: plain Indonesian, Indonesian with
// a regional accent, or the language/accent of another ethnicity.
type Locale struct {
	Kind LocaleKind `json:"kind"`
	// Name is the region for LocaleRegional and the ethnicity label for LocaleOther.
	Name string `json:"name,omitempty"`
}

const regionalPrefix = BaseLocale + "-"

// ResolveLocale parses an ethnicity label into a Locale.
// An empty label is voiced like the base locale.
func ResolveLocale(label string) Locale {
	switch {
	case label == "" || label == BaseLocale:
		return Locale{Kind: LocaleBase}
	case strings.HasPrefix(label, regionalPrefix):
		return Locale{Kind: LocaleRegional, Name: strings.TrimPrefix(label, regionalPrefix)}
	default:
		return Locale{Kind: LocaleOther, Name: label}
	}
}

// Native is the Indonesian phrase describing the spoken language.
func (l Locale) Native() string {
	switch l.Kind {
	case LocaleRegional:
		return "Bahasa Indonesia logat " + l.Name
	case LocaleOther:
		return "Bahasa/Aksen " + l.Name
	default:
		return "Bahasa Indonesia"
	}
}

// English is the English phrase describing the spoken language.
func (l Locale) English() string {
	switch l.Kind {
	case LocaleRegional:
		return "Indonesian language with " + l.Name + " accent"
	case LocaleOther:
		return l.Name + " language/accent"
	default:
		return "Indonesian language"
	}
}
