package mailer

import (
	"fmt"
	"net/url"
	"strings"
)

// ResetSubject is the subject line of the password-reset email.
const ResetSubject = "Reset your password"

// ResetLink builds the frontend URL the user clicks to complete the reset.
// The token travels as a query parameter: <base>/reset-password?token=<t>.
func ResetLink(frontendBase, token string) string {
	return strings.TrimRight(frontendBase, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetBody renders the HTML body of the reset email.  The link expires;
// the exact window is stated so the user knows how long they have.
func ResetBody(displayName, link string, ttlMinutes int) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to choose a new one:</p>
<p><a href=%q>%s</a></p>
<p>The link expires in %d minutes. If you did not request a reset, you can ignore this email.</p>`,
		displayName, link, link, ttlMinutes)
}
