package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/finance"
	"github.com/shopspring/decimal"
)

// resolveAccount returns the id of the account ref designates, by id or by
// name ignoring case.
func resolveAccount(s *finance.State, ref string) (string, error) {
	if ref == "" || s.Account(ref) != nil {
		return ref, nil
	}
	for _, a := range s.Accounts {
		if strings.EqualFold(a.Name, ref) {
			return a.ID, nil
		}
	}
	return "", fmt.Errorf("no account %q", ref)
}

// resolveCategory returns the id of the category ref designates, by id or by
// name ignoring case.
func resolveCategory(s *finance.State, ref string) (string, error) {
	if ref == "" || s.Category(ref) != nil {
		return ref, nil
	}
	for _, c := range s.Categories {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no category %q", ref)
}

// resolvePlanningCost returns the id of the planning cost ref designates, by
// id or by name ignoring case. Names are looked up in the given cycle.
func resolvePlanningCost(s *finance.State, ref string, cycle finance.CycleID) (string, error) {
	for _, p := range s.PlanningCosts {
		if p.ID == ref {
			return ref, nil
		}
	}
	for _, p := range s.PlanningCosts {
		if p.CycleID == cycle && strings.EqualFold(p.Name, ref) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("no planning cost %q in %s", ref, cycle)
}

// parseAmount parses an optional amount, nil when s is empty.
func parseAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return &d, nil
}
