package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glasswatch/glasswatch/internal/model"
)

// timeLayout is the TEXT encoding for timestamps. RFC 3339 keeps rows
// readable in sqlite3 and sorts lexicographically.
const timeLayout = time.RFC3339Nano

// marshalLedger converts a confirmation ledger to JSON TEXT for storage.
// A nil ledger marshals to "[]" so the column never holds SQL NULL.
func marshalLedger(ledger []model.Confirmation) (string, error) {
	if len(ledger) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(ledger)
	if err != nil {
		return "", fmt.Errorf("marshal ledger: %w", err)
	}
	return string(data), nil
}

// unmarshalLedger parses ledger JSON TEXT back into confirmations.
func unmarshalLedger(data string) ([]model.Confirmation, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var ledger []model.Confirmation
	if err := json.Unmarshal([]byte(data), &ledger); err != nil {
		return nil, fmt.Errorf("unmarshal ledger: %w", err)
	}
	return ledger, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
