package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ICSExporter renders events as an iCalendar (RFC 5545) feed of all-day entries.
type ICSExporter struct {
	ProductID string
	now       func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//CampusHub//Semester Planner//EN"
	}
	return &ICSExporter{ProductID: productID, now: time.Now}
}

// Render writes the calendar. Events without a complete date range are skipped.
func (e *ICSExporter) Render(name string, events []Event) ([]byte, error) {
	cal := ics.NewCalendarFor(e.ProductID)
	cal.SetMethod(ics.MethodPublish)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	stamp := e.now().UTC()
	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() {
			continue
		}
		if ev.UID == "" {
			return nil, fmt.Errorf("ics event %q missing uid", ev.Summary)
		}
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetAllDayStartAt(ev.Start)
		// DTEND of an all-day event is exclusive
		vevent.SetAllDayEndAt(ev.End.AddDate(0, 0, 1))
		vevent.SetSummary(ev.Summary)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
	}

	return []byte(cal.Serialize()), nil
}
