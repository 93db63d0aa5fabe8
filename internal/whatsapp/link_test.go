package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLink(t *testing.T) {
	assert.Equal(t,
		"https://wa.me/254115217699?text=Hi!%20I'm%20interested%20in%20Lightspeed%20services.",
		Link("+254 115-217-699", DefaultMessage))
	assert.Equal(t, "whatsapp://send?phone=254115217699&text=a%20%26%20b", AppLink("254115217699", "a & b"))
}

func TestEncodeComponentMatchesBrowser(t *testing.T) {
	cases := map[string]string{
		"Hi! I'd like (more) info*": "Hi!%20I'd%20like%20(more)%20info*",
		"a+b=c?":                    "a%2Bb%3Dc%3F",
		"50% off/now #1":            "50%25%20off%2Fnow%20%231",
		"Habari, karibu ~ café":     "Habari%2C%20karibu%20~%20caf%C3%A9",
	}
	for in, want := range cases {
		assert.Equal(t, want, encodeComponent(in), in)
	}
}

func TestContextMessage(t *testing.T) {
	cases := []struct{ path, want string }{
		{"/services/network-infrastructure", "Hi! I'm interested in Network Solutions. Can we discuss:"},
		{"/services/cloud-hosting", "Hi! I'm interested in Cloud Hosting. Can we discuss:"},
		{"/services/", "Hi! I'm interested in your services. Can we discuss:"},
		{"/contact", "Hi! I saw your contact page. I'd like to inquire about:"},
		{"/portfolio", "Hi! I saw your portfolio. I'd like to discuss a similar project:"},
		{"/blog/fiber-rollout", "Hi! I read your blog post. I'd like to learn more about:"},
		{"/blog", DefaultMessage},
		{"/", DefaultMessage},
		{"", DefaultMessage},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ContextMessage(tc.path), tc.path)
	}
}

func TestResolve(t *testing.T) {
	r := Resolver{PhoneE164: "254115217699", DisplayNumber: "0115217699", DefaultMessage: "Hello from the site"}

	got := r.Resolve("/", "")
	assert.Equal(t, "Hello from the site", got.Message)
	assert.Equal(t, "0115217699", got.DisplayNumber)
	assert.Equal(t, "https://wa.me/254115217699?text=Hello%20from%20the%20site", got.URL)

	got = r.Resolve("/contact", "  Custom note ")
	assert.Equal(t, "Custom note", got.Message, "explicit message wins over the path default")

	got = r.Resolve("/portfolio", "")
	assert.Equal(t, "Hi! I saw your portfolio. I'd like to discuss a similar project:", got.Message)
}
