// ABOUTME: JSON and CSV export of audit entries for offline analysis
// ABOUTME: CSV column order is fixed and part of the export contract

package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"
)

// csvHeader is the fixed CSV column order.
var csvHeader = []string{
	"id", "timestamp", "event_type", "user_id", "resource_type",
	"resource_id", "status", "thread_id", "post_id", "ip_address",
	"user_agent", "details", "error_message",
}

// ExportJSON renders entries as an indented JSON array.
func ExportJSON(entries []*Entry) ([]byte, error) {
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding audit export: %w", err)
	}
	return data, nil
}

// ExportCSV renders entries as CSV with the fixed header row. Details
// maps are JSON-encoded into their cell.
func ExportCSV(entries []*Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range entries {
		details := ""
		if len(e.Details) > 0 {
			data, err := json.Marshal(e.Details)
			if err != nil {
				return nil, fmt.Errorf("encoding details for %s: %w", e.ID, err)
			}
			details = string(data)
		}
		record := []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			string(e.Type),
			e.UserID,
			e.ResourceType,
			e.ResourceID,
			e.Status,
			e.ThreadID,
			e.PostID,
			e.IPAddress,
			e.UserAgent,
			details,
			e.ErrorMessage,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}
