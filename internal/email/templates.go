package email

import "fmt"

// VerificationEmail builds the subject and body for the address
// confirmation message sent on registration. The link embeds a
// single-purpose confirmation token.
func VerificationEmail(baseURL, firstName, token string) (subject, body string) {
	subject = "Confirm your CareSync account"
	link := fmt.Sprintf("%s/confirm?token=%s", baseURL, token)
	body = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Welcome to CareSync. Please confirm your email address to activate your account:</p>
<p><a href="%s">Confirm my account</a></p>
<p>The link is valid for 24 hours. If you did not create this account you can ignore this message.</p>
<p>The CareSync team</p>
</body></html>`, firstName, link)
	return subject, body
}

// InvitationEmail builds the subject and body for a care team
// invitation. The link embeds the invitation token that the carer
// redeems after signing in.
func InvitationEmail(baseURL, clientName, coordinatorName, token string) (subject, body string) {
	subject = fmt.Sprintf("You have been invited to the care team of %s", clientName)
	link := fmt.Sprintf("%s/invitations/redeem?token=%s", baseURL, token)
	body = fmt.Sprintf(`<html><body>
<p>Hi,</p>
<p>%s invited you to join the care team of %s on CareSync.</p>
<p><a href="%s">Accept the invitation</a></p>
<p>The invitation is valid for 30 days and can be used once. If you do not have a CareSync account yet, register with this email address first.</p>
<p>The CareSync team</p>
</body></html>`, coordinatorName, clientName, link)
	return subject, body
}
