package mail

import "context"

// Transport sends a single HTML email. Implementations must honor context
// cancellation and deadlines; the expiration fanout calls Send with a
// bounded timeout and performs no retries of its own.
type Transport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
