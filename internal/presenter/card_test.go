package presenter

import (
	"strings"
	"testing"
	"time"

	"shadowcal/internal/model"
)

func fixtureEvent() *model.Event {
	start := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	return &model.Event{
		ID:          "ev-1",
		EventID:     "evt-1",
		Title:       "Design <review>",
		Description: "Agenda:\n\n- item *one*\n- item two",
		Location:    "Room 4",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
	}
}

func fixtureCard() *model.Card {
	return &model.Card{
		ID:      "card-1",
		Title:   "Project kickoff",
		Content: "Some **bold** context.",
	}
}

func TestCardPresenterHTML(t *testing.T) {
	out, err := CardPresenter{}.HTML(fixtureCard(), fixtureEvent())
	if err != nil {
		t.Fatalf("render html: %v", err)
	}

	if !strings.Contains(out, "<h1>Design &lt;review&gt;</h1>") {
		t.Errorf("title not escaped in output:\n%s", out)
	}
	if !strings.Contains(out, "<em>one</em>") {
		t.Errorf("markdown description not rendered:\n%s", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("card content not rendered:\n%s", out)
	}
	if !strings.Contains(out, "Room 4") {
		t.Errorf("location missing:\n%s", out)
	}
}

func TestCardPresenterText(t *testing.T) {
	out, err := CardPresenter{}.Text(fixtureCard(), fixtureEvent())
	if err != nil {
		t.Fatalf("render text: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"UID:evt-1",
		"SUMMARY:Design <review>",
		"LOCATION:Room 4",
		"RELATED-TO:card-1",
		"END:VEVENT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ical output missing %q:\n%s", want, out)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := Default()

	if _, ok := r.Lookup(model.ClassCard); !ok {
		t.Error("default registry has no card presenter")
	}
	if _, ok := r.Lookup(model.ClassCalendar); ok {
		t.Error("unexpected presenter for calendar class")
	}

	r.Register(model.ClassCalendar, CardPresenter{})
	if _, ok := r.Lookup(model.ClassCalendar); !ok {
		t.Error("registered presenter not found")
	}
}
