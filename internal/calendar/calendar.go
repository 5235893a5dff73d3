// Package calendar renders events as an iCalendar feed
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/derWhity/eventqr/internal/models"
)

// ContentType is the media type of a serialized feed
const ContentType = "text/calendar; charset=utf-8"

// Feed describes the calendar the events are published in
type Feed struct {
	// ProductID is written as PRODID
	ProductID string
	// Domain makes the UIDs of the events globally unique
	Domain string
	// Location the all-day dates are anchored in
	Location *time.Location
}

// Render builds a calendar with one all-day VEVENT per event. stamp is used as DTSTAMP for all of them
func (f Feed) Render(events []models.Event, stamp time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(f.ProductID)
	for _, ev := range events {
		vev := cal.AddEvent(fmt.Sprintf("event-%d@%s", ev.ID, f.Domain))
		vev.SetDtStampTime(stamp)
		if !ev.CreatedAt.IsZero() {
			vev.SetCreatedTime(ev.CreatedAt)
		}
		if !ev.UpdatedAt.IsZero() {
			vev.SetModifiedAt(ev.UpdatedAt)
		}
		start := ev.Date.In(loc)
		vev.SetAllDayStartAt(start)
		vev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		vev.SetSummary(ev.Name)
		vev.SetDescription(ev.Description)
		if ev.QRCode != "" {
			vev.AddAttachmentURL(ev.QRCode, "image/png")
		}
	}
	return cal.Serialize()
}
