// internal/models/campaign.go
package models

// MeritCriteria holds the per-component weights of a campaign. The four
// weights must sum to exactly 100; this is validated before scoring, never
// silently normalized.
type MeritCriteria struct {
	AcademicWeight  float64 `json:"academicWeight"`
	EntranceWeight  float64 `json:"entranceWeight"`
	InterviewWeight float64 `json:"interviewWeight"`
	ExtraWeight     float64 `json:"extracurricularWeight"`
}

// ReservationQuota reserves a percentage of a campaign's seats for one
// applicant category.
type ReservationQuota struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
}

// Campaign is one admission cycle.
type Campaign struct {
	ID            string             `json:"id"`
	TotalSeats    int                `json:"totalSeats"`
	Criteria      MeritCriteria      `json:"criteria"`
	CutoffScore   *float64           `json:"cutoffScore,omitempty"`
	WaitlistLimit int                `json:"waitlistLimit,omitempty"` // 0 = unbounded
	Quotas        []ReservationQuota `json:"reservationQuotas,omitempty"`
}
