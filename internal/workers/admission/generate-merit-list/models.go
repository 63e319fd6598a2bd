// internal/workers/admission/generate-merit-list/models.go
package generatemeritlist

import "admission-workers/internal/models"

type Input struct {
	CampaignID        string               `json:"campaignId"`
	Criteria          models.MeritCriteria `json:"criteria"`
	CutoffScore       *float64             `json:"cutoffScore,omitempty"`
	ReservationPolicy bool                 `json:"reservationPolicy"`
	AdminToken        string               `json:"adminToken,omitempty"`
}

type Output struct {
	Success        bool   `json:"success"`
	RunID          string `json:"runId"`
	TotalProcessed int    `json:"totalProcessed"`
	Selected       int    `json:"selected"`
	Waitlisted     int    `json:"waitlisted"`
	Rejected       int    `json:"rejected"`
	Excluded       int    `json:"excluded"`
}
