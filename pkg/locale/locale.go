package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported UI language code.
type Locale string

const (
	// EN is English, the hard default.
	EN Locale = "en"
	// ES is Spanish.
	ES Locale = "es"
)

// Default is the locale used when no other source applies.
const Default = EN

// Supported returns all locales the application can render.
func Supported() []Locale {
	return []Locale{EN, ES}
}

// Valid reports whether l is a member of the supported set.
func (l Locale) Valid() bool {
	return l == EN || l == ES
}

func (l Locale) String() string {
	return string(l)
}

// Parse maps an arbitrary language tag onto the supported set. Exact codes
// ("es") and region-qualified tags ("es-MX", "es_MX") match by primary
// subtag. The second return value is false when the tag is empty, malformed
// or outside the supported set.
func Parse(tag string) (Locale, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}

	t, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return "", false
	}

	base, _ := t.Base()
	l := Locale(base.String())
	if !l.Valid() {
		return "", false
	}
	return l, true
}

// Resolve picks the active locale from competing sources in strict priority
// order: identity preference, then the device-persisted choice, then the
// user agent's tag, then Default. Nil pointers and invalid values fall
// through to the next source.
func Resolve(identityPref, storedChoice *Locale, userAgentTag string) Locale {
	if identityPref != nil && identityPref.Valid() {
		return *identityPref
	}
	if storedChoice != nil && storedChoice.Valid() {
		return *storedChoice
	}
	if l, ok := Parse(userAgentTag); ok {
		return l
	}
	return Default
}

// SystemTag derives the user agent's language tag from the process
// environment (LC_ALL, LC_MESSAGES, LANG, in POSIX precedence). Returns an
// empty string when none is set; encoding suffixes like ".UTF-8" are
// stripped.
func SystemTag() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if idx := strings.IndexByte(v, '.'); idx > 0 {
			v = v[:idx]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
