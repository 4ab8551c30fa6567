package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"veostudio/internal/i18n"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// I18N negotiates the response language from X-Locale, then Accept-Language,
// then defaultLocale.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := detectLocale(r, defaultLocale)
			w.Header().Set("Content-Language", i18n.Code(tag))
			ctx := context.WithValue(r.Context(), LocaleKey, tag)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) language.Tag {
	return i18n.Negotiate(r.Header.Get("X-Locale"), r.Header.Get("Accept-Language"), fallback)
}

func LocaleFromContext(ctx context.Context) language.Tag {
	if v, ok := ctx.Value(LocaleKey).(language.Tag); ok {
		return v
	}
	return language.English
}
