package data

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record markers separating human-readable card text from the JSON
// payload in a card description
const (
	contactMarker   = "---CONTACT---"
	scheduledMarker = "---SCHEDULED_MESSAGE---"
)

// encodeRecord renders a typed record as marker + JSON for a card
// description field
func encodeRecord(marker string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return marker + "\n" + string(data), nil
}

// decodeRecord locates the marker in a card description and parses the
// JSON suffix into v. A missing marker or malformed JSON returns an
// error; callers silently exclude such cards from results.
func decodeRecord(desc, marker string, v interface{}) error {
	idx := strings.Index(desc, marker)
	if idx < 0 {
		return fmt.Errorf("marker not found")
	}
	payload := strings.TrimSpace(desc[idx+len(marker):])
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}
