package expiry

import (
	"fmt"
	"time"

	"docnotify/internal/model"
)

// Notification wording is derived from the sign of the day offset at scan
// time, never stored. The rendered title doubles as part of the dedup key,
// so it embeds the document label to keep different documents from
// colliding on the same day.

func renderTitle(doc *model.Document, offsetDays int) string {
	label := doc.Label()
	switch {
	case offsetDays > 1:
		return fmt.Sprintf("Document %q expires in %d days", label, offsetDays)
	case offsetDays == 1:
		return fmt.Sprintf("Document %q expires in 1 day", label)
	case offsetDays == 0:
		return fmt.Sprintf("Document %q expires today", label)
	case offsetDays == -1:
		return fmt.Sprintf("Document %q expired 1 day ago", label)
	default:
		return fmt.Sprintf("Document %q expired %d days ago", label, -offsetDays)
	}
}

func renderMessage(doc *model.Document, owner *model.User, isOwner bool, loc *time.Location) string {
	date := ""
	if doc.ExpiresAt != nil {
		date = doc.ExpiresAt.In(loc).Format("2006-01-02")
	}
	if isOwner {
		return fmt.Sprintf("Your document %q has an expiration date of %s. Please review it and upload a renewed version if needed.", doc.Label(), date)
	}
	ownerName := "an unknown user"
	if owner != nil {
		ownerName = owner.Name
	}
	return fmt.Sprintf("Document %q owned by %s has an expiration date of %s.", doc.Label(), ownerName, date)
}
