package expiry

import (
	"encoding/json"
	"log"
	"time"
)

// logEvent writes one JSON object per line to stdout, matching the logging
// style used across the service (request logger, migrations).
func logEvent(loc *time.Location, level, event string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().In(loc).Format(time.RFC3339Nano),
		"level":     level,
		"component": "expiry",
		"event":     event,
	}
	for k, v := range fields {
		entry[k] = v
	}

	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal expiry log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
