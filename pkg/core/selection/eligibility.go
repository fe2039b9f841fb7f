package selection

import (
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
)

// ServicePackageRule describes one service package's matching behavior.
// Packages with FilterHouseholds set require the adviser's household
// preferences to cover the deal's household type; the rest pair on the
// package token alone.
type ServicePackageRule struct {
	Name             string
	FilterHouseholds bool
}

// RuleTable indexes service package rules by name.
type RuleTable map[string]ServicePackageRule

// NewRuleTable builds the lookup table from a rule list.
func NewRuleTable(rules []ServicePackageRule) RuleTable {
	table := make(RuleTable, len(rules))
	for _, r := range rules {
		table[r.Name] = r
	}
	return table
}

// IsEligible reports whether an adviser may take the deal: they must be
// accepting new clients and offer the deal's service package. When the
// package's rule calls for household filtering they must also accept
// the deal's household type.
func (t RuleTable) IsEligible(adviser model.AdviserProfile, deal model.Deal) bool {
	if !adviser.AcceptingClients {
		return false
	}
	if !adviser.OffersPackage(deal.ServicePackage) {
		return false
	}
	if rule, ok := t[deal.ServicePackage]; ok && rule.FilterHouseholds {
		return adviser.AcceptsHousehold(deal.HouseholdType)
	}
	return true
}
