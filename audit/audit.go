// Package audit appends human-readable event records to the logs collection.
// The trail is write-only and best-effort: a failed append is reported on
// the process log but never fails the mutation it describes.
package audit

import (
	"context"
	"fmt"
	"log"

	"daynight/db"
)

type Logger struct {
	store db.Store
}

func NewLogger(store db.Store) *Logger {
	return &Logger{store: store}
}

// Event appends a formatted audit record.
func (l *Logger) Event(ctx context.Context, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if err := l.store.AppendLog(ctx, message); err != nil {
		log.Printf("Warning: failed to append audit log %q: %v", message, err)
	}
}
