// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/iwvelando/cost-estimator/internal/plans"
)

// SampleRequest returns the Thailand comfortable studio request used across
// tests. It estimates to a total of 1213.
func SampleRequest() estimator.Request {
	return estimator.Request{
		Destination: "thailand",
		Lifestyle:   estimator.Comfortable,
		StayLength:  6,
		Housing:     estimator.Studio,
		Traveler:    estimator.Solo,
		WorkStyle:   estimator.Remote,
	}
}

// FindPlan finds a plan by ID in the list.
// Returns a pointer to the plan if found, nil otherwise.
func FindPlan(list []plans.Plan, id string) *plans.Plan {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// FindLead finds a lead by email in the list.
// Returns a pointer to the first match if found, nil otherwise.
func FindLead(list []leads.Lead, email string) *leads.Lead {
	for i := range list {
		if list[i].Email == email {
			return &list[i]
		}
	}
	return nil
}
