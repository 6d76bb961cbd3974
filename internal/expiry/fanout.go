package expiry

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"

	"docnotify/internal/mail"
	"docnotify/internal/model"
	"docnotify/internal/repository"
	"docnotify/internal/storage"
)

// emailSendTimeout bounds a single outbound email attempt. There is no
// retry; retry policy belongs to the transport if anywhere.
const emailSendTimeout = 10 * time.Second

// presignExpiry is how long the download link embedded in an expiration
// email stays valid.
const presignExpiry = 24 * time.Hour

// DeliveryResult reports what happened for one recipient. The in-app row and
// the email attempt are tracked separately: an email failure never reverses
// a created notification.
type DeliveryResult struct {
	Created        bool
	EmailAttempted bool
	EmailErr       error
}

// Fanout creates the in-app notification and attempts the email for a single
// recipient. The claim and the insert are one atomic repository call, so
// repeated deliveries for the same (recipient, type, title) on the same
// calendar day are suppressed, and the email is only attempted when the
// claim succeeded.
type Fanout struct {
	notifs repository.NotificationRepository
	prefs  repository.PreferenceRepository
	mailer mail.Transport
	store  storage.Storage
	clock  Clock
	loc    *time.Location
}

// NewFanout builds a Fanout. mailer and store may be nil: a nil mailer
// disables email entirely, a nil store disables download links.
func NewFanout(
	notifs repository.NotificationRepository,
	prefs repository.PreferenceRepository,
	mailer mail.Transport,
	store storage.Storage,
	clock Clock,
	loc *time.Location,
) *Fanout {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.Local
	}
	return &Fanout{notifs: notifs, prefs: prefs, mailer: mailer, store: store, clock: clock, loc: loc}
}

// Deliver notifies one recipient about one (document, offset) pair.
// A nil error with Created=false means the dedup claim found an existing
// notification for today, the expected steady state on repeated runs.
// A non-nil error means the in-app write failed and the recipient was not
// told; the caller logs it and moves on to the next recipient.
func (f *Fanout) Deliver(ctx context.Context, recipient *model.User, doc *model.Document, owner *model.User, offsetDays int, isOwner bool) (DeliveryResult, error) {
	now := f.clock.Now().In(f.loc)
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    recipient.ID,
		Type:      model.NotificationTypeDocumentExpiring,
		Title:     renderTitle(doc, offsetDays),
		Message:   renderMessage(doc, owner, isOwner, f.loc),
		DedupDay:  now.Format("2006-01-02"),
		CreatedAt: now,
	}

	claim, err := f.notifs.ClaimAndInsert(ctx, n)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("claim notification for user %s: %w", recipient.ID, err)
	}
	if !claim.Created {
		return DeliveryResult{Created: false}, nil
	}

	result := DeliveryResult{Created: true}

	if f.mailer == nil || !recipient.HasEmail() {
		return result, nil
	}

	allowed, err := f.prefs.Allows(ctx, recipient.ID, n.Type)
	if err != nil {
		// The in-app row is already written; a broken preference lookup only
		// suppresses the email.
		logEvent(f.loc, "error", "preference_lookup_failed", map[string]any{
			"user_id":       recipient.ID,
			"error_message": err.Error(),
		})
		return result, nil
	}
	if !allowed {
		return result, nil
	}

	result.EmailAttempted = true
	sendCtx, cancel := context.WithTimeout(ctx, emailSendTimeout)
	defer cancel()
	if err := f.mailer.Send(sendCtx, recipient.Email, n.Title, f.emailBody(ctx, n, doc)); err != nil {
		result.EmailErr = err
	}
	return result, nil
}

// emailBody renders the HTML email. When object storage is available it
// appends a presigned download link; presign failure degrades to a plain
// email rather than blocking delivery.
func (f *Fanout) emailBody(ctx context.Context, n *model.Notification, doc *model.Document) string {
	body := fmt.Sprintf("<p>%s</p><p>%s</p>", html.EscapeString(n.Title), html.EscapeString(n.Message))
	if f.store == nil || doc.StoragePath == "" {
		return body
	}
	link, err := f.store.PresignGet(ctx, doc.StoragePath, presignExpiry)
	if err != nil {
		logEvent(f.loc, "error", "presign_failed", map[string]any{
			"document_id":   doc.ID,
			"error_message": err.Error(),
		})
		return body
	}
	return body + fmt.Sprintf(`<p><a href=%q>Download the document</a></p>`, link)
}
