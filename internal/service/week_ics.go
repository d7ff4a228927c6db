package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"teaching-hours/backend/internal/model"
)

// ── week calendar (.ics) ────────────────────────────────────
//
// One VEVENT per school week. All-day events carry an exclusive DTEND,
// timed events are reduced to their dates. A missing DTEND means a 7-day week.
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 1 * 1024 * 1024 // 1MB
	icsMaxEvents     = 60
	icsProductID     = "-//teaching-hours//weeks//VI"
	localTimezone    = "Asia/Ho_Chi_Minh"
	localUTCOffsetHr = 7
)

// icsWeek one parsed VEVENT; Err is set when the event cannot become a week
type icsWeek struct {
	Index   int
	Summary string
	Start   time.Time
	End     time.Time
	Err     string
}

func localLocation() *time.Location {
	if loc, err := time.LoadLocation(localTimezone); err == nil {
		return loc
	}
	return time.FixedZone("ICT", localUTCOffsetHr*3600)
}

// parseWeeksICS reads every VEVENT of an iCalendar stream as a week
func parseWeeksICS(reader io.Reader) ([]icsWeek, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	loc := localLocation()
	events := cal.Events()
	if len(events) > icsMaxEvents {
		return nil, fmt.Errorf("ics has %d events, limit is %d", len(events), icsMaxEvents)
	}

	weeks := make([]icsWeek, 0, len(events))
	for i, evt := range events {
		weeks = append(weeks, parseWeekEvent(i+1, evt, loc))
	}
	return weeks, nil
}

func parseWeekEvent(index int, evt *ics.VEvent, loc *time.Location) icsWeek {
	w := icsWeek{Index: index}
	if summary := evt.GetProperty(ics.ComponentPropertySummary); summary != nil {
		w.Summary = strings.TrimSpace(summary.Value)
	}

	start, _, err := parseICSDate(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		w.Err = "thiếu hoặc sai DTSTART"
		return w
	}
	w.Start = start

	end, allDay, err := parseICSDate(evt, ics.ComponentPropertyDtEnd, loc)
	switch {
	case err != nil:
		w.End = start.AddDate(0, 0, 6)
	case allDay:
		w.End = end.AddDate(0, 0, -1)
	default:
		w.End = end
	}
	if w.End.Before(w.Start) {
		w.Err = "ngày kết thúc trước ngày bắt đầu"
	}
	return w
}

// parseICSDate returns the date of a DTSTART/DTEND in loc, reporting whether it was a bare DATE
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	if t, err := time.Parse("20060102", val); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true, nil
	}
	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		switch {
		case strings.HasSuffix(layout, "Z"):
			t = t.In(loc)
		case tzid != "":
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc)
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
	}

	return time.Time{}, false, fmt.Errorf("cannot parse date %q", val)
}

// buildWeeksICS serialises weeks as all-day events
func buildWeeksICS(label string, weeks []model.Week, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, w := range weeks {
		evt := cal.AddEvent(w.WeekID + "@teaching-hours")
		evt.SetDtStampTime(now)
		evt.SetSummary(fmt.Sprintf("Tuần %d", w.WeekNumber))
		evt.SetDescription("Năm học " + label)
		evt.SetAllDayStartAt(w.StartDate)
		evt.SetAllDayEndAt(w.EndDate.AddDate(0, 0, 1))
	}
	return cal.Serialize()
}
