// Package appid holds the static identity of the lightspeed binary.
package appid

import "strings"

// Identity describes how the application names itself on the command line,
// in environment variables, and in telemetry.
type Identity struct {
	BinaryName  string
	ConfigName  string
	EnvPrefix   string
	Description string
	Namespace   string
}

var current = Identity{
	BinaryName:  "lightspeed",
	ConfigName:  "lightspeed",
	EnvPrefix:   "LIGHTSPEED_",
	Description: "Lightspeed site backend: chat assist, contact inquiries and WhatsApp links",
	Namespace:   "lightspeed",
}

// Get returns the application identity.
func Get() Identity {
	return current
}

// TelemetryNamespace returns the metric namespace, falling back to the binary name.
func (i Identity) TelemetryNamespace() string {
	if ns := strings.TrimSpace(i.Namespace); ns != "" {
		return ns
	}
	return i.BinaryName
}

// EnvKey joins the env prefix with name, e.g. EnvKey("PORT") == "LIGHTSPEED_PORT".
func (i Identity) EnvKey(name string) string {
	prefix := i.EnvPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix + strings.ToUpper(name)
}
