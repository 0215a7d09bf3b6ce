package i18n

import (
	"fmt"
	"strings"

	"github.com/whistledesk/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale is used when no supported locale is requested.
const DefaultLocale = constants.LocaleEN

// localeContextKey lets middleware pin a locale for the request.
const localeContextKey = "locale"

// T returns the message for key in locale, falling back to the default locale and then the key.
func T(locale, key string) string {
	if msgs, ok := catalog[NormalizeLocale(locale)]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf formats the message for key with args.
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// NormalizeLocale maps a language tag such as "sw-KE" onto a supported locale.
func NormalizeLocale(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return DefaultLocale
	}
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		tag = tag[:idx]
	}
	for _, supported := range constants.SupportedLocales {
		if tag == supported {
			return supported
		}
	}
	return DefaultLocale
}

// ResolveLocale picks the request locale from context or Accept-Language.
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if value, ok := c.Get(localeContextKey); ok {
		if locale, ok := value.(string); ok && locale != "" {
			return NormalizeLocale(locale)
		}
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return DefaultLocale
	}
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		normalized := NormalizeLocale(tag)
		if strings.HasPrefix(strings.ToLower(tag), normalized) {
			return normalized
		}
	}
	return DefaultLocale
}
