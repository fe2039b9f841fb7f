package crmclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelfp/deal-allocator/pkg/core/model"
)

const dateFormat = "2006-01-02"

type adviserRecord struct {
	Email            string   `json:"email"`
	OwnerID          string   `json:"ownerId"`
	StartDate        string   `json:"startDate"`
	PodType          string   `json:"podType"`
	MonthlyLimit     int      `json:"monthlyLimit"`
	ServicePackages  []string `json:"servicePackages"`
	HouseholdTypes   []string `json:"householdTypes"`
	AcceptingClients bool     `json:"acceptingClients"`
}

type adviserPage struct {
	Results []adviserRecord `json:"results"`
	After   string          `json:"after"`
}

// ListAdvisers fetches the full adviser roster. Records without an email
// cannot participate in allocation and are dropped.
func (c *Client) ListAdvisers(ctx context.Context) ([]model.AdviserProfile, error) {
	var advisers []model.AdviserProfile

	after := ""
	for {
		query := url.Values{"limit": {strconv.Itoa(defaultPageSize)}}
		if after != "" {
			query.Set("after", after)
		}

		var page adviserPage
		if err := c.getJSON(ctx, "/advisers", query, &page); err != nil {
			return nil, err
		}

		for _, record := range page.Results {
			if record.Email == "" {
				continue
			}
			advisers = append(advisers, record.toProfile())
		}

		after = page.After
		if after == "" {
			break
		}
	}

	return advisers, nil
}

func (r adviserRecord) toProfile() model.AdviserProfile {
	// An unparseable start date leaves the field zero, which the quota
	// resolver treats as an established adviser.
	startDate, _ := time.ParseInLocation(dateFormat, r.StartDate, time.UTC)

	return model.AdviserProfile{
		Email:            strings.ToLower(r.Email),
		OwnerID:          r.OwnerID,
		StartDate:        startDate,
		PodType:          r.PodType,
		BaseMonthlyLimit: r.MonthlyLimit,
		ServicePackages:  r.ServicePackages,
		HouseholdTypes:   r.HouseholdTypes,
		AcceptingClients: r.AcceptingClients,
	}
}
