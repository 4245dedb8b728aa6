package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Notifier wraps a Sink with the best-effort policy the account workflow
// needs: fire the welcome notifications, log failures, never surface them.
//
// THE CONTRACT:
// WelcomeNewUser never returns an error. By the time it runs, the user row
// is already committed — a third-party email outage must not fail the
// sign-in or roll anything back. This is an at-most-once effort: a failed
// welcome email is logged and NOT retried.
//
// A nil sink disables notifications entirely (the server runs without a
// Resend API key in development); each skipped send is logged at Debug.
type Notifier struct {
	sink   Sink
	logger *slog.Logger
}

// NewNotifier creates a Notifier. sink may be nil to disable delivery.
func NewNotifier(sink Sink, logger *slog.Logger) *Notifier {
	return &Notifier{sink: sink, logger: logger}
}

// WelcomeNewUser sends the welcome email and creates the mailing-list
// contact for a just-created account.
//
// The two sink calls are independent — neither reads the other's result and
// both failures are discarded — so they run concurrently. We still wait for
// both before returning: the caller's request context funds the work, and
// letting goroutines outlive it would race request teardown.
//
// displayName may be empty; the fallback to the email's local part happens
// here so every sink sees the same name.
func (n *Notifier) WelcomeNewUser(ctx context.Context, email, displayName string) {
	if n.sink == nil {
		n.logger.Debug("notification sink disabled, skipping welcome",
			slog.String("email", email))
		return
	}

	if displayName == "" {
		displayName = localPart(email)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := n.sink.SendWelcomeEmail(ctx, email, displayName); err != nil {
			// Logged and swallowed. Account creation already succeeded.
			n.logger.Warn("welcome email failed",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		}
	}()

	go func() {
		defer wg.Done()
		if err := n.sink.UpsertContact(ctx, email, displayName, "", false); err != nil {
			n.logger.Warn("mailing-list contact upsert failed",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		}
	}()

	wg.Wait()
}

// localPart returns everything before the '@' of an email address.
func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
