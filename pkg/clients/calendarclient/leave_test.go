package calendarclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

func allDayEvent(summary, creator, start, end string) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Creator: &calendar.EventCreator{Email: creator},
		Start:   &calendar.EventDateTime{Date: start},
		End:     &calendar.EventDateTime{Date: end},
	}
}

func TestParseLeaveEvent_AllDaySingleDay(t *testing.T) {
	// A one-day all-day event has an exclusive end of the next day
	event := allDayEvent("OOO - dentist", "jane@kestrelfp.com", "2025-03-10", "2025-03-11")

	email, interval, ok := parseLeaveEvent(event, "OOO")
	require.True(t, ok)

	assert.Equal(t, "jane@kestrelfp.com", email)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), interval.Start)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), interval.End)
}

func TestParseLeaveEvent_AllDayMultiDay(t *testing.T) {
	event := allDayEvent("Jane OOO", "jane@kestrelfp.com", "2025-03-10", "2025-03-15")

	_, interval, ok := parseLeaveEvent(event, "OOO")
	require.True(t, ok)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), interval.Start)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), interval.End)
}

func TestParseLeaveEvent_TimedEvent(t *testing.T) {
	event := &calendar.Event{
		Summary: "ooo afternoon",
		Creator: &calendar.EventCreator{Email: "Sam@kestrelfp.com"},
		Start:   &calendar.EventDateTime{DateTime: "2025-03-12T13:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2025-03-12T17:30:00Z"},
	}

	email, interval, ok := parseLeaveEvent(event, "OOO")
	require.True(t, ok)

	assert.Equal(t, "sam@kestrelfp.com", email)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), interval.Start)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), interval.End)
}

func TestParseLeaveEvent_KeywordCaseInsensitive(t *testing.T) {
	event := allDayEvent("Out of office (Ooo)", "jane@kestrelfp.com", "2025-03-10", "2025-03-11")

	_, _, ok := parseLeaveEvent(event, "ooo")
	assert.True(t, ok)
}

func TestParseLeaveEvent_IgnoresNonLeaveEvents(t *testing.T) {
	event := allDayEvent("Team social", "jane@kestrelfp.com", "2025-03-10", "2025-03-11")

	_, _, ok := parseLeaveEvent(event, "OOO")
	assert.False(t, ok)
}

func TestParseLeaveEvent_FallsBackToOrganizer(t *testing.T) {
	event := &calendar.Event{
		Summary:   "OOO",
		Organizer: &calendar.EventOrganizer{Email: "jane@kestrelfp.com"},
		Start:     &calendar.EventDateTime{Date: "2025-03-10"},
		End:       &calendar.EventDateTime{Date: "2025-03-11"},
	}

	email, _, ok := parseLeaveEvent(event, "OOO")
	require.True(t, ok)
	assert.Equal(t, "jane@kestrelfp.com", email)
}

func TestParseLeaveEvent_SkipsUnattributable(t *testing.T) {
	event := &calendar.Event{
		Summary: "OOO",
		Start:   &calendar.EventDateTime{Date: "2025-03-10"},
		End:     &calendar.EventDateTime{Date: "2025-03-11"},
	}

	_, _, ok := parseLeaveEvent(event, "OOO")
	assert.False(t, ok)
}

func TestParseLeaveEvent_SkipsMalformedDates(t *testing.T) {
	event := &calendar.Event{
		Summary: "OOO",
		Creator: &calendar.EventCreator{Email: "jane@kestrelfp.com"},
		Start:   &calendar.EventDateTime{DateTime: "not-a-date"},
		End:     &calendar.EventDateTime{Date: "2025-03-11"},
	}

	_, _, ok := parseLeaveEvent(event, "OOO")
	assert.False(t, ok)
}
