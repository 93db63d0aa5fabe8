// Package whatsapp builds click-to-chat links for the site's WhatsApp number.
package whatsapp

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMessage is used when no page-specific message applies.
const DefaultMessage = "Hi! I'm interested in Lightspeed services."

// Link returns the https://wa.me click-to-chat URL for phone with message
// prefilled. Everything but digits is dropped from phone.
func Link(phone, message string) string {
	return "https://wa.me/" + digits(phone) + "?text=" + encodeComponent(message)
}

// AppLink returns the whatsapp:// URL opened directly by the mobile app.
func AppLink(phone, message string) string {
	return "whatsapp://send?phone=" + digits(phone) + "&text=" + encodeComponent(message)
}

// ContextMessage picks the prefilled message for a page path.
func ContextMessage(path string) string {
	return contextMessage(path, DefaultMessage)
}

func contextMessage(path, fallback string) string {
	switch {
	case strings.HasPrefix(path, "/services/network-infrastructure"):
		return "Hi! I'm interested in Network Solutions. Can we discuss:"
	case strings.HasPrefix(path, "/services/"):
		return "Hi! I'm interested in " + serviceName(strings.TrimPrefix(path, "/services/")) + ". Can we discuss:"
	case path == "/contact":
		return "Hi! I saw your contact page. I'd like to inquire about:"
	case path == "/portfolio":
		return "Hi! I saw your portfolio. I'd like to discuss a similar project:"
	case strings.HasPrefix(path, "/blog/"):
		return "Hi! I read your blog post. I'd like to learn more about:"
	}
	if fallback == "" {
		return DefaultMessage
	}
	return fallback
}

// serviceName turns "cloud-hosting" into "Cloud Hosting".
func serviceName(slug string) string {
	if slug == "" {
		return "your services"
	}
	words := strings.Split(slug, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// componentUnescaper undoes QueryEscape for the characters a browser's
// encodeURIComponent leaves alone, and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s for use inside a query value the same
// way the site's own links do.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
