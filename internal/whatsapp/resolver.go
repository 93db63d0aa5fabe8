package whatsapp

import "strings"

// Resolver produces links for one configured number.
type Resolver struct {
	PhoneE164      string
	DisplayNumber  string
	DefaultMessage string
}

// Target is a resolved chat link.
type Target struct {
	URL           string `json:"url"`
	AppURL        string `json:"app_url"`
	Message       string `json:"message"`
	DisplayNumber string `json:"display_number"`
}

// Resolve picks the message (an explicit message wins over the path-based
// one) and builds both link forms.
func (r Resolver) Resolve(path, message string) Target {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = contextMessage(path, r.DefaultMessage)
	}
	return Target{
		URL:           Link(r.PhoneE164, msg),
		AppURL:        AppLink(r.PhoneE164, msg),
		Message:       msg,
		DisplayNumber: r.DisplayNumber,
	}
}
