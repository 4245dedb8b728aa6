package notify

import (
	"fmt"
	"html/template"
	"strings"
)

// welcomeTemplate is the welcome email body.
//
// html/template (not text/template) escapes the interpolated name, so a
// display name like `<script>` renders inert. The template is parsed once
// at package init — template.Must panics on a syntax error, which is what
// we want for a compile-time constant.
var welcomeTemplate = template.Must(template.New("welcome").Parse(`<div>
  <h1>Hey {{.Name}},</h1>
  <p>welcome.</p>
  <img src="https://i.postimg.cc/YqcRH4J8/image.png" alt="Welcome to Forge Zone" />
  <p>Welcome to Forge Zone — glad to have you on board!</p>
  <p>Check out our latest build: <b>Create your own Spotify AI Rewind</b>. It's live now.</p>
  <p>And remember: it's easier to quit than to build — but growth only happens when you keep going.</p>
  <p><i>"The people who are crazy enough to think they can change the world are the ones who do."</i> — Steve Jobs</p>
  <p>— Shrit</p>
</div>`))

// renderWelcomeEmail renders the welcome body for the given display name.
// An empty name falls back to "Builder".
func renderWelcomeEmail(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "Builder"
	}

	var sb strings.Builder
	if err := welcomeTemplate.Execute(&sb, struct{ Name string }{Name: name}); err != nil {
		return "", fmt.Errorf("executing welcome template: %w", err)
	}
	return sb.String(), nil
}
