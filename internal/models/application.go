// internal/models/application.go
package models

import "time"

// ApplicationStatus is the lifecycle state of an admission application.
type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "DRAFT"
	StatusSubmitted          ApplicationStatus = "SUBMITTED"
	StatusUnderReview        ApplicationStatus = "UNDER_REVIEW"
	StatusShortlisted        ApplicationStatus = "SHORTLISTED"
	StatusEntranceScheduled  ApplicationStatus = "ENTRANCE_SCHEDULED"
	StatusInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	StatusSelected           ApplicationStatus = "SELECTED"
	StatusWaitlisted         ApplicationStatus = "WAITLISTED"
	StatusRejected           ApplicationStatus = "REJECTED"
	StatusAdmitted           ApplicationStatus = "ADMITTED"
	StatusWithdrawn          ApplicationStatus = "WITHDRAWN"
)

// DecisionSource records who last stamped a decision status on an application.
// A REJECTED row from manual review is final; a REJECTED row from a merit-list
// run is superseded by the next run.
type DecisionSource string

const (
	DecisionSourceNone      DecisionSource = ""
	DecisionSourceMeritList DecisionSource = "merit_list"
	DecisionSourceReview    DecisionSource = "review"
)

// Application is one admission submission. Raw component scores are nil until
// recorded; merit score and rank are derived and only ever written by the
// merit-list engine.
type Application struct {
	ID             string            `json:"id"`
	CampaignID     string            `json:"campaignId"`
	Category       string            `json:"category,omitempty"`
	AcademicScore  *float64          `json:"academicScore,omitempty"`
	EntranceScore  *float64          `json:"entranceScore,omitempty"`
	InterviewScore *float64          `json:"interviewScore,omitempty"`
	ExtraScore     *float64          `json:"extracurricularScore,omitempty"`
	MeritScore     *float64          `json:"meritScore,omitempty"`
	MeritRank      *int              `json:"meritRank,omitempty"`
	Status         ApplicationStatus `json:"status"`
	DecisionSource DecisionSource    `json:"decisionSource,omitempty"`
	SubmittedAt    time.Time         `json:"submittedAt"`
}

// ScoreOrZero returns a raw component score, treating an unrecorded score as
// zero contribution rather than disqualifying.
func ScoreOrZero(s *float64) float64 {
	if s == nil {
		return 0
	}
	return *s
}
