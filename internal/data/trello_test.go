package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/trello"
)

var testLists = TrelloListIDs{
	Scheduled: "list-sched",
	Contacts:  "list-contacts",
	Sent:      "list-sent",
	Admins:    "list-admins",
}

func newTestStore(t *testing.T, handler http.HandlerFunc) (*trelloStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cli := trello.NewClient("test-key", "test-token")
	cli.SetBaseURL(srv.URL)
	return NewTrelloStore(cli, testLists, "field-1").(*trelloStore), srv
}

func TestTrelloStore_ListContactsExcludesMalformed(t *testing.T) {
	goodDesc, _ := encodeRecord(contactMarker, contactRecord{UserID: "u1", LineName: "阿美"})
	cards := []trello.Card{
		{ID: "c1", Name: "Amy Chen", Desc: goodDesc},
		{ID: "c2", Name: "free-form note", Desc: "just human text"},
		{ID: "c3", Name: "Broken", Desc: contactMarker + "\n{not json"},
	}

	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/lists/list-contacts/cards") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Missing key credential")
		}
		json.NewEncoder(w).Encode(cards)
	})

	contacts, err := store.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("Expected 1 contact, got %d", len(contacts))
	}
	c := contacts[0]
	if c.CardID != "c1" || c.Name != "Amy Chen" || c.UserID != "u1" || c.LineName != "阿美" {
		t.Errorf("Wrong contact: %+v", c)
	}
}

func TestTrelloStore_ListAdmins(t *testing.T) {
	withID, _ := encodeRecord(contactMarker, contactRecord{UserID: "boss"})
	withoutID, _ := encodeRecord(contactMarker, contactRecord{LineName: "manual"})
	cards := []trello.Card{
		{ID: "a1", Name: "Boss", Desc: withID},
		{ID: "a2", Name: "Manual", Desc: withoutID},
	}

	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cards)
	})

	admins, err := store.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("ListAdmins failed: %v", err)
	}
	if len(admins) != 1 || admins[0] != "boss" {
		t.Errorf("Expected [boss], got %v", admins)
	}
}

func TestTrelloStore_ListScheduled(t *testing.T) {
	desc, _ := encodeRecord(scheduledMarker, scheduledRecord{
		RecipientName:   "Amy",
		RecipientUserID: "u-amy",
		SenderUserID:    "boss",
		Message:         "記得開會",
		CreatedAt:       "2026-03-10T14:30:00+08:00",
	})
	cards := []trello.Card{
		{ID: "s1", Name: "📨 Amy：記得開會", Desc: desc, Due: "2026-03-11T01:00:00Z"},
	}

	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cards)
	})

	msgs, err := store.ListScheduled(context.Background())
	if err != nil {
		t.Fatalf("ListScheduled failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.CardID != "s1" || m.RecipientUserID != "u-amy" || m.Due != "2026-03-11T01:00:00Z" {
		t.Errorf("Wrong message: %+v", m)
	}
}

func TestTrelloStore_CreateScheduled(t *testing.T) {
	var gotName, gotList, gotDue string
	var fieldCalls int

	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/cards"):
			q := r.URL.Query()
			gotName = q.Get("name")
			gotList = q.Get("idList")
			gotDue = q.Get("due")
			json.NewEncoder(w).Encode(trello.Card{ID: "new-card"})
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/customField/"):
			fieldCalls++
			fmt.Fprint(w, "{}")
		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	msg := &domain.ScheduledMessage{
		RecipientName:   "Amy",
		RecipientUserID: "u-amy",
		SenderUserID:    "boss",
		Message:         "記得開會",
		CreatedAt:       "2026-03-10T14:30:00+08:00",
	}
	due := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	if err := store.CreateScheduled(context.Background(), msg, due); err != nil {
		t.Fatalf("CreateScheduled failed: %v", err)
	}

	if msg.CardID != "new-card" {
		t.Errorf("Expected CardID fill-in, got %q", msg.CardID)
	}
	if msg.Due != "2026-03-11T01:00:00Z" {
		t.Errorf("Expected Due fill-in, got %q", msg.Due)
	}
	if gotList != testLists.Scheduled {
		t.Errorf("Expected scheduled list, got %q", gotList)
	}
	if gotName != "📨 Amy：記得開會" {
		t.Errorf("Unexpected card title: %q", gotName)
	}
	if gotDue != "2026-03-11T01:00:00Z" {
		t.Errorf("Unexpected due param: %q", gotDue)
	}
	if fieldCalls != 1 {
		t.Errorf("Expected 1 custom-field update, got %d", fieldCalls)
	}
}

func TestTrelloStore_CreateContactSurvivesFieldFailure(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/cards"):
			json.NewEncoder(w).Encode(trello.Card{ID: "new-contact"})
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/customField/"):
			http.Error(w, "field gone", http.StatusNotFound)
		}
	})

	contact := &domain.Contact{UserID: "u1", Name: "Amy Chen", LineName: "阿美"}
	if err := store.CreateContact(context.Background(), contact); err != nil {
		t.Fatalf("CreateContact must tolerate a field failure, got %v", err)
	}
	if contact.CardID != "new-contact" {
		t.Errorf("Expected CardID fill-in, got %q", contact.CardID)
	}
}

func TestTrelloStore_MarkSentMovesCard(t *testing.T) {
	var gotList string
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || !strings.HasSuffix(r.URL.Path, "/cards/s1") {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotList = r.URL.Query().Get("idList")
		fmt.Fprint(w, "{}")
	})

	if err := store.MarkSent(context.Background(), "s1"); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	if gotList != testLists.Sent {
		t.Errorf("Expected move to sent list, got %q", gotList)
	}
}

func TestTrelloStore_DeleteScheduled(t *testing.T) {
	var deleted bool
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/cards/s1") {
			deleted = true
		}
		fmt.Fprint(w, "{}")
	})

	if err := store.DeleteScheduled(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteScheduled failed: %v", err)
	}
	if !deleted {
		t.Error("Expected a DELETE request for the card")
	}
}

func TestTrelloStore_ListErrorPropagates(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	if _, err := store.ListContacts(context.Background()); err == nil {
		t.Fatal("Expected error on API failure")
	}
}
