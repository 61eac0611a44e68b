package trigger

import (
	"context"
	"testing"

	"shadowcal/internal/model"
)

func TestAccountCreateEmitsPersonalCalendar(t *testing.T) {
	s := &fakeStore{}
	acc := &model.Account{ID: "acct-new", Person: "person-new", Email: "new@example.com"}
	tx := model.NewCreateTx("acct-new", acc.ID, model.ClassAccount, acc)

	out, err := OnAccountCreate(context.Background(), control(s), tx)
	if err != nil {
		t.Fatalf("account create trigger: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1", len(out))
	}

	cal, ok := out[0].CalendarPayload()
	if !ok {
		t.Fatal("transaction carries no calendar payload")
	}
	if cal.Name != "new@example.com" {
		t.Errorf("calendar name = %q, want the account email", cal.Name)
	}
	if cal.Hidden {
		t.Error("personal calendar must not be hidden")
	}
	if cal.Visibility != model.VisibilityPublic {
		t.Errorf("visibility = %q, want public", cal.Visibility)
	}
	if cal.ID != model.PersonalCalendarID("acct-new") {
		t.Errorf("calendar id = %q, want the deterministic id for acct-new", cal.ID)
	}
}

func TestPersonalCalendarIDIsStable(t *testing.T) {
	a := model.PersonalCalendarID("acct-1")
	b := model.PersonalCalendarID("acct-1")
	if a != b {
		t.Fatalf("ids differ across calls: %q vs %q", a, b)
	}
	if a == model.PersonalCalendarID("acct-2") {
		t.Fatal("distinct accounts produced the same calendar id")
	}
}

func TestAccountCreateIgnoresForeignPayload(t *testing.T) {
	s := &fakeStore{}
	tx := model.NewCreateTx("acct-x", "cal-x", model.ClassCalendar, &model.Calendar{ID: "cal-x"})

	out, err := OnAccountCreate(context.Background(), control(s), tx)
	if err != nil {
		t.Fatalf("account create trigger: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d transactions, want 0", len(out))
	}
}
