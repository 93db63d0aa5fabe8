package contact

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/inquiry.html
var templatesFS embed.FS

var inquiryTemplate = template.Must(template.ParseFS(templatesFS, "templates/inquiry.html"))

// Inquiry is the data rendered into the notification email.
type Inquiry struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
	IP      string
	Site    string
}

// Render produces the HTML email body. Every field is escaped; an empty
// phone is shown as "Not provided".
func Render(in Inquiry) (string, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	var buf bytes.Buffer
	if err := inquiryTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render inquiry email: %w", err)
	}
	return buf.String(), nil
}
