package data

import (
	"strings"
	"testing"
)

func TestEncodeDecodeContactRecord(t *testing.T) {
	in := contactRecord{UserID: "u1", LineName: "阿美", CreatedAt: "2026-03-10T14:30:00+08:00"}

	desc, err := encodeRecord(contactMarker, in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(desc, contactMarker+"\n") {
		t.Errorf("Expected marker prefix, got %q", desc)
	}

	var out contactRecord
	if err := decodeRecord(desc, contactMarker, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out != in {
		t.Errorf("Round trip mismatch: %+v != %+v", out, in)
	}
}

func TestDecodeRecord_LeadingHumanText(t *testing.T) {
	desc := "聯絡人備註，手動補充\n\n" + scheduledMarker + "\n" +
		`{"recipient_name":"Amy","sender_user_id":"boss","message":"hi","created_at":"2026-03-10T14:30:00+08:00"}`

	var rec scheduledRecord
	if err := decodeRecord(desc, scheduledMarker, &rec); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.RecipientName != "Amy" || rec.Message != "hi" {
		t.Errorf("Wrong record: %+v", rec)
	}
}

func TestDecodeRecord_MissingMarker(t *testing.T) {
	var rec contactRecord
	if err := decodeRecord(`{"user_id":"u1"}`, contactMarker, &rec); err == nil {
		t.Fatal("Expected error for missing marker")
	}
}

func TestDecodeRecord_MalformedJSON(t *testing.T) {
	var rec contactRecord
	if err := decodeRecord(contactMarker+"\nnot json", contactMarker, &rec); err == nil {
		t.Fatal("Expected error for malformed payload")
	}
}
