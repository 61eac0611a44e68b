package presenter

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/yuin/goldmark"

	"shadowcal/internal/model"
)

// CardPresenter renders events attached to cards. HTML output embeds the
// card's markdown content; text output is an iCalendar document so it can be
// pasted into any calendar client.
type CardPresenter struct{}

func (CardPresenter) HTML(target *model.Card, ev *model.Event) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(ev.Title))
	fmt.Fprintf(&b, "<p>%s — %s</p>\n",
		ev.StartTime.UTC().Format(time.RFC1123),
		ev.EndTime.UTC().Format(time.RFC1123))
	if ev.Location != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(ev.Location))
	}

	if ev.Description != "" {
		if err := goldmark.Convert([]byte(ev.Description), &b); err != nil {
			return "", fmt.Errorf("render description: %w", err)
		}
	}

	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(target.Title))
	if target.Content != "" {
		if err := goldmark.Convert([]byte(target.Content), &b); err != nil {
			return "", fmt.Errorf("render card content: %w", err)
		}
	}

	return b.String(), nil
}

func (CardPresenter) Text(target *model.Card, ev *model.Event) (string, error) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, ev.EventID)
	ve.Props.SetText(ical.PropSummary, ev.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.EndTime.UTC())
	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	ve.Props.SetText(ical.PropRelatedTo, string(target.ID))

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//shadowcal//EN")
	cal.Children = append(cal.Children, ve)

	var b strings.Builder
	if err := ical.NewEncoder(&b).Encode(cal); err != nil {
		return "", fmt.Errorf("encode ical: %w", err)
	}
	return b.String(), nil
}
