// Package mail delivers account emails. The service only ever talks to the
// Mailer interface; delivery failures are logged and never change the HTTP
// response, so a probe cannot learn whether an address exists.
package mail

import "context"

// Mailer sends the account workflow emails.
type Mailer interface {
	// SendVerification emails a link containing a single-use email
	// verification token.
	SendVerification(ctx context.Context, to, token string) error

	// SendPasswordReset emails a link containing a single-use password
	// reset token.
	SendPasswordReset(ctx context.Context, to, token string) error
}
