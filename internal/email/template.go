package email

import (
	"fmt"
	"html/template"
	"strings"
)

const welcomeSubject = "Welcome to app"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<html>
  <body>
    <h1>Welcome, {{.Name}}!</h1>
    <p>Thanks for signing up. Confirm your email address with this code:</p>
    <p><strong>{{.VerificationCode}}</strong></p>
  </body>
</html>`))

// RenderWelcome produces the welcome email body carrying the OTP.
func RenderWelcome(name, otp string) (string, error) {
	var sb strings.Builder
	err := welcomeTmpl.Execute(&sb, struct {
		Name             string
		VerificationCode string
	}{Name: name, VerificationCode: otp})
	if err != nil {
		return "", fmt.Errorf("render welcome template: %w", err)
	}
	return sb.String(), nil
}
