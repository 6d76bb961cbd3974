package expiry

import (
	"context"
	"fmt"
	"time"

	"docnotify/internal/model"
	"docnotify/internal/repository"
)

// DefaultOffsets are the day deltas evaluated by every scan: a week, three
// days and one day ahead, the expiration day itself, and three days past.
var DefaultOffsets = []int{7, 3, 1, 0, -3}

// Scanner finds documents whose expiration date lands on one of the
// configured day offsets relative to "today" in the scanner's location.
type Scanner struct {
	docs    repository.DocumentRepository
	offsets []int
	loc     *time.Location
}

// NewScanner validates the offset set and builds a Scanner. Offsets must be
// non-empty and free of duplicates; duplicates would break the guarantee
// that a document appears in at most one batch per cycle.
func NewScanner(docs repository.DocumentRepository, offsets []int, loc *time.Location) (*Scanner, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("scanner: at least one day offset is required")
	}
	seen := make(map[int]bool, len(offsets))
	for _, off := range offsets {
		if seen[off] {
			return nil, fmt.Errorf("scanner: duplicate day offset %d", off)
		}
		seen[off] = true
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scanner{docs: docs, offsets: offsets, loc: loc}, nil
}

// dayWindow returns the [start, end) boundary of the calendar day that lies
// offsetDays away from now, in the scanner's location.
func (s *Scanner) dayWindow(now time.Time, offsetDays int) (time.Time, time.Time) {
	local := now.In(s.loc)
	target := local.AddDate(0, 0, offsetDays)
	start := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// Scan queries one batch per offset and invokes visit for every
// (document, offset) pair found. Each offset maps to a distinct calendar
// day, so a document shows up in at most one batch. A query failure for one
// offset is logged and that batch skipped; remaining offsets still run.
// It returns the number of pairs visited and the number of failed offsets.
func (s *Scanner) Scan(ctx context.Context, now time.Time, visit func(model.Document, int)) (scanned, failedOffsets int) {
	for _, off := range s.offsets {
		start, end := s.dayWindow(now, off)
		docs, err := s.docs.FindExpiringBetween(ctx, start, end)
		if err != nil {
			failedOffsets++
			logEvent(s.loc, "error", "scan_offset_failed", map[string]any{
				"offset_days":   off,
				"window_start":  start.Format(time.RFC3339),
				"window_end":    end.Format(time.RFC3339),
				"error_message": err.Error(),
			})
			continue
		}
		for _, doc := range docs {
			scanned++
			visit(doc, off)
		}
	}
	return scanned, failedOffsets
}
