package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shadowcal/internal/database"
	"shadowcal/internal/logging"
	"shadowcal/internal/model"
	"shadowcal/internal/pipeline"
	"shadowcal/internal/presenter"
	"shadowcal/internal/store"
)

func setupHandlers(t *testing.T) (*TransactionHandler, *EventHandler, *pipeline.Reader) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := logging.Setup("error", "text")
	reader := &pipeline.Reader{
		Events:    store.NewEventStore(db),
		Calendars: store.NewCalendarStore(db),
		Accounts:  store.NewAccountStore(db),
		Cards:     store.NewCardStore(db),
	}
	presenters := presenter.Default()
	pipe := pipeline.New(reader, store.NewTxStore(db), presenters, nil, logger)

	return NewTransactionHandler(pipe, logger), NewEventHandler(reader, presenters, logger), reader
}

func seedWorld(t *testing.T, r *pipeline.Reader) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, pair := range []struct{ person, account, email string }{
		{"person-owner", "acct-owner", "owner@example.com"},
		{"person-a", "acct-a", "a@example.com"},
	} {
		if err := r.Accounts.CreatePerson(ctx, &model.Person{ID: model.Ref(pair.person), Name: pair.person, CreatedAt: now}); err != nil {
			t.Fatalf("seed person: %v", err)
		}
		if err := r.Accounts.CreateAccount(ctx, &model.Account{
			ID: model.Ref(pair.account), Person: model.Ref(pair.person), Email: pair.email, CreatedAt: now,
		}); err != nil {
			t.Fatalf("seed account: %v", err)
		}
		if err := r.Calendars.Create(ctx, &model.Calendar{
			ID: model.Ref("cal-" + pair.account), Name: pair.email, Visibility: model.VisibilityPublic,
			CreatedBy: model.Ref(pair.account), ModifiedBy: model.Ref(pair.account),
			CreatedAt: now, ModifiedAt: now,
		}); err != nil {
			t.Fatalf("seed calendar: %v", err)
		}
	}

	if err := r.Cards.Create(ctx, &model.Card{ID: "card-1", Title: "Kickoff", Content: "Notes.", CreatedAt: now}); err != nil {
		t.Fatalf("seed card: %v", err)
	}
}

const createEventBody = `{
	"kind": "create",
	"actor": "acct-owner",
	"object_id": "ev-owner",
	"object_class": "event",
	"attached_to": "card-1",
	"attached_to_class": "card",
	"collection": "events",
	"document": {
		"id": "ev-owner",
		"event_id": "evt-1",
		"calendar": "cal-acct-owner",
		"access": "owner",
		"title": "Kickoff meeting",
		"start_time": "2026-08-20T09:00:00Z",
		"end_time": "2026-08-20T10:00:00Z",
		"visibility": "public",
		"participants": ["person-owner", "person-a"],
		"attached_to": "card-1",
		"attached_to_class": "card",
		"collection": "events",
		"created_by": "acct-owner",
		"modified_by": "acct-owner",
		"created_at": "2026-08-20T08:00:00Z",
		"modified_at": "2026-08-20T08:00:00Z"
	}
}`

func TestIngestCreateReplicates(t *testing.T) {
	txH, _, reader := setupHandlers(t)
	seedWorld(t, reader)

	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(createEventBody))
	rec := httptest.NewRecorder()
	txH.Ingest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Applied int         `json:"applied"`
		IDs     []model.Ref `json:"ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Incoming create plus the reader copy for person-a.
	if resp.Applied != 2 {
		t.Fatalf("applied = %d, want 2", resp.Applied)
	}

	copies, err := reader.Events.ByEventID(context.Background(), "evt-1", "ev-owner")
	if err != nil {
		t.Fatalf("read copies: %v", err)
	}
	if len(copies) != 1 || copies[0].Access != model.AccessReader {
		t.Fatalf("copies = %v, want one reader copy", copies)
	}
}

func TestIngestRejectsBadPayloads(t *testing.T) {
	txH, _, _ := setupHandlers(t)

	for name, body := range map[string]string{
		"not json":     "{",
		"bad kind":     `{"kind":"upsert","actor":"a","object_id":"o","object_class":"event"}`,
		"no actor":     `{"kind":"remove","object_id":"o","object_class":"event"}`,
		"empty update": `{"kind":"update","actor":"a","object_id":"o","object_class":"event"}`,
		"no document":  `{"kind":"create","actor":"a","object_id":"o","object_class":"event"}`,
		"bad class":    `{"kind":"create","actor":"a","object_id":"o","object_class":"gadget","document":{}}`,
	} {
		req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		txH.Ingest(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestEventEndpoints(t *testing.T) {
	txH, evH, reader := setupHandlers(t)
	seedWorld(t, reader)

	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(createEventBody))
	rec := httptest.NewRecorder()
	txH.Ingest(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed event: status %d", rec.Code)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events/{id}/html", evH.HTML)
	mux.HandleFunc("GET /api/events/{id}/text", evH.Text)
	mux.HandleFunc("GET /api/documents/{id}/reminders", evH.Reminders)

	htmlRec := httptest.NewRecorder()
	mux.ServeHTTP(htmlRec, httptest.NewRequest("GET", "/api/events/ev-owner/html", nil))
	if htmlRec.Code != http.StatusOK {
		t.Fatalf("html status = %d, body %s", htmlRec.Code, htmlRec.Body.String())
	}
	if !strings.Contains(htmlRec.Body.String(), "Kickoff meeting") {
		t.Errorf("html output missing event title:\n%s", htmlRec.Body.String())
	}

	textRec := httptest.NewRecorder()
	mux.ServeHTTP(textRec, httptest.NewRequest("GET", "/api/events/ev-owner/text", nil))
	if textRec.Code != http.StatusOK {
		t.Fatalf("text status = %d", textRec.Code)
	}
	if !strings.Contains(textRec.Body.String(), "BEGIN:VEVENT") {
		t.Errorf("text output is not iCalendar:\n%s", textRec.Body.String())
	}

	remRec := httptest.NewRecorder()
	mux.ServeHTTP(remRec, httptest.NewRequest("GET", "/api/documents/card-1/reminders", nil))
	if remRec.Code != http.StatusOK {
		t.Fatalf("reminders status = %d", remRec.Code)
	}
	var events []model.Event
	if err := json.Unmarshal(remRec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode reminders: %v", err)
	}
	// Owner copy plus the replicated reader copy, both attached to card-1.
	if len(events) != 2 {
		t.Fatalf("reminders = %d events, want 2", len(events))
	}

	missRec := httptest.NewRecorder()
	mux.ServeHTTP(missRec, httptest.NewRequest("GET", "/api/events/nope/html", nil))
	if missRec.Code != http.StatusNotFound {
		t.Errorf("missing event status = %d, want %d", missRec.Code, http.StatusNotFound)
	}
}
