// internal/workers/admission/validate-campaign-config/models.go
package validatecampaignconfig

import "admission-workers/internal/models"

type Input struct {
	CampaignID    string                    `json:"campaignId"`
	TotalSeats    int                       `json:"totalSeats"`
	Criteria      models.MeritCriteria      `json:"criteria"`
	CutoffScore   *float64                  `json:"cutoffScore,omitempty"`
	WaitlistLimit int                       `json:"waitlistLimit,omitempty"`
	Quotas        []models.ReservationQuota `json:"reservationQuotas,omitempty"`
}

type Output struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"validationErrors,omitempty"`
}
