// Package i18n localizes the workflow status messages shown to users.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Status message keys. The English text doubles as the key.
const (
	MsgValidating   = "Validating API Key..."
	MsgStarting     = "Starting video generation..."
	MsgProcessing   = "Processing your video. This may take a few minutes..."
	MsgDone         = "Video generated!"
	MsgUnknownError = "An unknown error occurred."
	MsgCancelled    = "Generation cancelled."
)

var indonesian = map[string]string{
	MsgValidating:   "Memvalidasi kunci API...",
	MsgStarting:     "Memulai pembuatan video...",
	MsgProcessing:   "Video Anda sedang diproses. Ini bisa memakan waktu beberapa menit...",
	MsgDone:         "Video berhasil dibuat!",
	MsgUnknownError: "Terjadi kesalahan yang tidak diketahui.",
	MsgCancelled:    "Pembuatan video dibatalkan.",
}

var (
	supported = []language.Tag{language.English, language.Indonesian}
	matcher   = language.NewMatcher(supported)
	messages  = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range indonesian {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Indonesian, key, text)
	}
	return b
}

// Negotiate picks the best supported language for an explicit locale or an
// Accept-Language header value, falling back to fallback and then English.
func Negotiate(locale, acceptLanguage, fallback string) language.Tag {
	var prefs []language.Tag
	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		prefs = append(prefs, tag)
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		prefs = append(prefs, tags...)
	}
	if len(prefs) == 0 {
		if tag, err := language.Parse(strings.TrimSpace(fallback)); err == nil {
			prefs = append(prefs, tag)
		}
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Translate renders a status message in tag. Text that is not a known key,
// such as an error returned by the remote service, is returned unchanged.
func Translate(tag language.Tag, text string) string {
	if _, known := indonesian[text]; !known {
		return text
	}
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(text)
}

// Code returns the short language code used in API responses.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
