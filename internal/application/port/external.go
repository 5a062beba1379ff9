package port

import "context"

// EmailSender delivers notification emails. Delivery is best-effort: callers
// log failures and never propagate them into the triggering workflow
// transition. Address resolution from the user ID happens behind this
// interface, outside the workflow core.
type EmailSender interface {
	Send(ctx context.Context, userID int64, subject, body string) error
}

// EmailEnqueuer hands an email off for asynchronous, fire-and-forget
// delivery. Implementations must never block the caller.
type EmailEnqueuer interface {
	Enqueue(userID int64, subject, body string)
}
