// internal/workers/admission/update-application-status/models.go
package updateapplicationstatus

type Input struct {
	ApplicationID string `json:"applicationId"`
	TargetStatus  string `json:"targetStatus"`
	Reason        string `json:"reason,omitempty"`
	ActorID       string `json:"actorId,omitempty"`
}

type Output struct {
	Success        bool   `json:"success"`
	ApplicationID  string `json:"applicationId"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
	UpdatedAt      string `json:"updatedAt"` // ISO 8601
}
