package calendarclient

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/kestrelfp/deal-allocator/pkg/core/attendance"
)

const allDayDateFormat = "2006-01-02"

// ListLeaveIntervals fetches events from the shared leave calendar between
// from and until and returns the out-of-office intervals grouped by adviser
// email. Only events whose summary contains the keyword (case-insensitive)
// are treated as leave; everything else on the calendar is ignored.
func (c *Client) ListLeaveIntervals(calendarID, keyword string, from, until time.Time) (map[string][]attendance.Interval, error) {
	intervals := make(map[string][]attendance.Interval)

	pageToken := ""
	for {
		call := c.service.Events.List(calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(until.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendar events: %w", err)
		}

		for _, event := range events.Items {
			email, interval, ok := parseLeaveEvent(event, keyword)
			if !ok {
				continue
			}
			intervals[email] = append(intervals[email], interval)
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return intervals, nil
}

// parseLeaveEvent extracts the adviser email and absence interval from a
// calendar event. Events without the leave keyword, without an attributable
// creator, or with unparseable dates are skipped.
func parseLeaveEvent(event *calendar.Event, keyword string) (string, attendance.Interval, bool) {
	if event == nil || event.Start == nil || event.End == nil {
		return "", attendance.Interval{}, false
	}

	if !strings.Contains(strings.ToLower(event.Summary), strings.ToLower(keyword)) {
		return "", attendance.Interval{}, false
	}

	email := eventOwnerEmail(event)
	if email == "" {
		return "", attendance.Interval{}, false
	}

	start, err := eventDate(event.Start)
	if err != nil {
		return "", attendance.Interval{}, false
	}

	end, err := eventDate(event.End)
	if err != nil {
		return "", attendance.Interval{}, false
	}

	// All-day events carry an exclusive end date.
	if event.End.Date != "" {
		end = end.AddDate(0, 0, -1)
	}

	interval := attendance.Interval{Start: start, End: end}
	if !interval.Valid() {
		return "", attendance.Interval{}, false
	}

	return email, interval, true
}

// eventOwnerEmail attributes an event to an adviser, preferring the creator
// over the organizer since shared calendar events are organized by the
// calendar itself.
func eventOwnerEmail(event *calendar.Event) string {
	if event.Creator != nil && event.Creator.Email != "" {
		return strings.ToLower(event.Creator.Email)
	}
	if event.Organizer != nil && event.Organizer.Email != "" {
		return strings.ToLower(event.Organizer.Email)
	}
	return ""
}

// eventDate resolves either side of an event to a UTC date. All-day events
// use the Date field; timed events are truncated to the day they fall on.
func eventDate(edt *calendar.EventDateTime) (time.Time, error) {
	if edt.Date != "" {
		return time.ParseInLocation(allDayDateFormat, edt.Date, time.UTC)
	}

	t, err := time.Parse(time.RFC3339, edt.DateTime)
	if err != nil {
		return time.Time{}, err
	}

	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}
