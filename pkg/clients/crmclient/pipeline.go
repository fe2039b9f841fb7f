package crmclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelfp/deal-allocator/pkg/core/model"
)

type meetingRecord struct {
	OwnerID  string `json:"ownerId"`
	Activity string `json:"activity"`
	StartsAt string `json:"startsAt"`
}

type meetingPage struct {
	Results []meetingRecord `json:"results"`
	After   string          `json:"after"`
}

// ListMeetings fetches Clarify and Kick Off meetings starting on or after
// the given time. Other activity types never consume capacity, so the CRM
// is asked to filter them out server-side; anything unexpected that slips
// through is dropped here.
func (c *Client) ListMeetings(ctx context.Context, from time.Time) ([]model.Meeting, error) {
	var meetings []model.Meeting

	after := ""
	for {
		query := url.Values{
			"limit":      {strconv.Itoa(defaultPageSize)},
			"from":       {from.UTC().Format(time.RFC3339)},
			"activities": {string(model.ActivityClarify) + "," + string(model.ActivityKickOff)},
		}
		if after != "" {
			query.Set("after", after)
		}

		var page meetingPage
		if err := c.getJSON(ctx, "/meetings", query, &page); err != nil {
			return nil, err
		}

		for _, record := range page.Results {
			activity := model.Activity(record.Activity)
			if !activity.IsValid() {
				continue
			}

			startsAt, err := time.Parse(time.RFC3339, record.StartsAt)
			if err != nil {
				continue
			}

			meetings = append(meetings, model.Meeting{
				OwnerID:  record.OwnerID,
				Activity: activity,
				StartsAt: startsAt,
			})
		}

		after = page.After
		if after == "" {
			break
		}
	}

	return meetings, nil
}

type dealRecord struct {
	ID             string `json:"id"`
	AdviserEmail   string `json:"adviserEmail"`
	ServicePackage string `json:"servicePackage"`
	HouseholdType  string `json:"householdType"`
	AgreementStart string `json:"agreementStart"`
}

type dealPage struct {
	Results []dealRecord `json:"results"`
	After   string       `json:"after"`
}

// ListOpenDeals fetches pipeline deals that have no Clarify meeting booked
// yet. These form the scheduling backlog for their assigned advisers.
func (c *Client) ListOpenDeals(ctx context.Context) ([]model.Deal, error) {
	var deals []model.Deal

	after := ""
	for {
		query := url.Values{
			"limit":  {strconv.Itoa(defaultPageSize)},
			"status": {"open"},
		}
		if after != "" {
			query.Set("after", after)
		}

		var page dealPage
		if err := c.getJSON(ctx, "/deals", query, &page); err != nil {
			return nil, err
		}

		for _, record := range page.Results {
			// A missing agreement start is tolerated; it just leaves the
			// deal unbounded by an agreement week.
			agreementStart, _ := time.ParseInLocation(dateFormat, record.AgreementStart, time.UTC)

			deals = append(deals, model.Deal{
				ID:             record.ID,
				AdviserEmail:   strings.ToLower(record.AdviserEmail),
				ServicePackage: record.ServicePackage,
				HouseholdType:  record.HouseholdType,
				AgreementStart: agreementStart,
			})
		}

		after = page.After
		if after == "" {
			break
		}
	}

	return deals, nil
}
