package expiry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"docnotify/internal/metrics"
	"docnotify/internal/model"
	"docnotify/internal/repository"
)

// Summary is the outcome of one expiration-check cycle, returned to the
// manual trigger endpoint and logged after every scheduled run.
type Summary struct {
	DocumentsScanned     int `json:"documents_scanned"`
	OffsetsFailed        int `json:"offsets_failed"`
	NotificationsCreated int `json:"notifications_created"`
	EmailsSent           int `json:"emails_sent"`
	EmailsFailed         int `json:"emails_failed"`
	RecipientsSkipped    int `json:"recipients_skipped"`
}

// Runner runs one expiration-check cycle on demand. The Scheduler and the
// manual trigger endpoint both go through it, which keeps them behind the
// same dedup guard.
type Runner interface {
	RunNow(ctx context.Context) (*Summary, error)
}

// Service orchestrates one cycle: scan offsets, resolve recipients, fan out.
type Service struct {
	scanner *Scanner
	users   repository.UserRepository
	fanout  *Fanout
	metrics *metrics.ExpiryMetrics
	loc     *time.Location

	// Serializes cycles so an overlapping manual trigger and scheduled run
	// cannot interleave. Cross-process overlap is handled by the dedup index.
	mu sync.Mutex
}

// NewService builds the cycle orchestrator. metrics may be nil.
func NewService(scanner *Scanner, users repository.UserRepository, fanout *Fanout, m *metrics.ExpiryMetrics, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{scanner: scanner, users: users, fanout: fanout, metrics: m, loc: loc}
}

var _ Runner = (*Service)(nil)

// RunNow executes one full cycle. A panic anywhere inside the cycle is
// recovered here so a bad cycle can never take down the scheduler loop.
func (s *Service) RunNow(ctx context.Context) (summary *Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logEvent(s.loc, "error", "cycle_panic", map[string]any{"panic": fmt.Sprint(r)})
			summary = nil
			err = fmt.Errorf("expiration cycle panicked: %v", r)
		}
		if s.metrics != nil {
			s.metrics.CyclesTotal.Inc()
			if err != nil {
				s.metrics.CycleFailures.Inc()
			}
		}
	}()

	start := time.Now()
	summary = s.runCycle(ctx)

	logEvent(s.loc, "info", "cycle_complete", map[string]any{
		"documents_scanned":     summary.DocumentsScanned,
		"offsets_failed":        summary.OffsetsFailed,
		"notifications_created": summary.NotificationsCreated,
		"emails_sent":           summary.EmailsSent,
		"emails_failed":         summary.EmailsFailed,
		"recipients_skipped":    summary.RecipientsSkipped,
		"duration_ms":           time.Since(start).Milliseconds(),
	})

	if s.metrics != nil {
		s.metrics.DocumentsScanned.Add(float64(summary.DocumentsScanned))
		s.metrics.NotificationsCreated.Add(float64(summary.NotificationsCreated))
		s.metrics.EmailsSent.Add(float64(summary.EmailsSent))
		s.metrics.EmailsFailed.Add(float64(summary.EmailsFailed))
	}
	return summary, nil
}

func (s *Service) runCycle(ctx context.Context) *Summary {
	summary := &Summary{}
	now := s.fanout.clock.Now()

	// Admins are re-queried every cycle so promotions and demotions take
	// effect without a restart. An empty set just means owner-only fan-out.
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		logEvent(s.loc, "error", "admin_lookup_failed", map[string]any{"error_message": err.Error()})
		admins = nil
	}

	scanned, failed := s.scanner.Scan(ctx, now, func(doc model.Document, offsetDays int) {
		s.fanOutDocument(ctx, &doc, offsetDays, admins, summary)
	})
	summary.DocumentsScanned = scanned
	summary.OffsetsFailed = failed
	return summary
}

// fanOutDocument notifies the document's owner and every admin. Failures are
// isolated per recipient: one failed claim or email never stops the rest.
func (s *Service) fanOutDocument(ctx context.Context, doc *model.Document, offsetDays int, admins []model.User, summary *Summary) {
	owner, err := s.users.FindByID(ctx, doc.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logEvent(s.loc, "warn", "document_owner_missing", map[string]any{
				"document_id": doc.ID,
				"owner_id":    doc.OwnerID,
			})
		} else {
			logEvent(s.loc, "error", "owner_lookup_failed", map[string]any{
				"document_id":   doc.ID,
				"owner_id":      doc.OwnerID,
				"error_message": err.Error(),
			})
		}
		// Orphaned or unreadable owner: skip the document entirely.
		return
	}

	s.deliverTo(ctx, owner, doc, owner, offsetDays, true, summary)
	for i := range admins {
		s.deliverTo(ctx, &admins[i], doc, owner, offsetDays, false, summary)
	}
}

func (s *Service) deliverTo(ctx context.Context, recipient *model.User, doc *model.Document, owner *model.User, offsetDays int, isOwner bool, summary *Summary) {
	result, err := s.fanout.Deliver(ctx, recipient, doc, owner, offsetDays, isOwner)
	if err != nil {
		summary.RecipientsSkipped++
		logEvent(s.loc, "error", "recipient_skipped", map[string]any{
			"document_id":   doc.ID,
			"user_id":       recipient.ID,
			"error_message": err.Error(),
		})
		return
	}
	if result.Created {
		summary.NotificationsCreated++
	}
	if result.EmailAttempted {
		if result.EmailErr != nil {
			summary.EmailsFailed++
			logEvent(s.loc, "error", "email_failed", map[string]any{
				"document_id":   doc.ID,
				"user_id":       recipient.ID,
				"error_message": result.EmailErr.Error(),
			})
		} else {
			summary.EmailsSent++
		}
	}
}
