// internal/models/filter.go
package models

import "fmt"

// ApplicationFilter is the typed query filter for application reads. Queries
// are always campaign-scoped; there is no global listing in the engine.
type ApplicationFilter struct {
	CampaignID string
	Statuses   []ApplicationStatus
}

// Validate rejects filters that would produce unscoped or empty queries.
func (f ApplicationFilter) Validate() error {
	if f.CampaignID == "" {
		return fmt.Errorf("application filter requires a campaignId")
	}
	if len(f.Statuses) == 0 {
		return fmt.Errorf("application filter requires at least one status")
	}
	return nil
}

// StatusStrings returns the status set as plain strings for SQL array binding.
func (f ApplicationFilter) StatusStrings() []string {
	out := make([]string, len(f.Statuses))
	for i, s := range f.Statuses {
		out[i] = string(s)
	}
	return out
}
