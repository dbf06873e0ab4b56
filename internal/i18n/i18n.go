// Package i18n picks the display language for boss names from a request.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the viewer's language preference.
	LangCookieName = "bossfight_lang"
)

// Supported lists the locales the built-in roster carries names for.
func Supported() []language.Tag {
	return []language.Tag{language.English, language.Russian}
}

// Resolver matches requests against the supported locales.
type Resolver struct {
	fallback language.Tag
	matcher  language.Matcher
	tags     []language.Tag
}

// NewResolver builds a Resolver whose fallback is listed first so the
// matcher prefers it on a weak match.
func NewResolver(fallback language.Tag) *Resolver {
	tags := []language.Tag{fallback}
	for _, tag := range Supported() {
		if base(tag) != base(fallback) {
			tags = append(tags, tag)
		}
	}
	return &Resolver{fallback: fallback, matcher: language.NewMatcher(tags), tags: tags}
}

func (r *Resolver) Default() language.Tag {
	return r.fallback
}

// ParseTag parses value and reports whether it matches a supported locale.
func (r *Resolver) ParseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return r.fallback, false
	}
	_, idx, confidence := r.matcher.Match(parsed)
	if confidence == language.No {
		return r.fallback, false
	}
	return r.tags[idx], true
}

// ResolveTag determines the best language tag for the request from the lang
// query parameter, then the preference cookie, then Accept-Language.
// The bool indicates whether the query param should be persisted as a cookie.
func (r *Resolver) ResolveTag(req *http.Request) (language.Tag, bool) {
	if req == nil {
		return r.fallback, false
	}

	if langValue := strings.TrimSpace(req.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := r.ParseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := req.Cookie(LangCookieName); err == nil {
		if tag, ok := r.ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, confidence := r.matcher.Match(tags...)
			if confidence != language.No {
				return r.tags[idx], false
			}
		}
	}

	return r.fallback, false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
