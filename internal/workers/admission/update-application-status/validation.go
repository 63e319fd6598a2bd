// internal/workers/admission/update-application-status/validation.go
package updateapplicationstatus

import (
	"fmt"

	"admission-workers/internal/common/validation"
)

var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"applicationId": {Type: "string", MinLength: intPtr(1)},
		"targetStatus": {
			Type: "string",
			Enum: []string{
				"DRAFT", "SUBMITTED", "UNDER_REVIEW", "SHORTLISTED",
				"ENTRANCE_SCHEDULED", "INTERVIEW_SCHEDULED",
				"SELECTED", "WAITLISTED", "REJECTED",
				"ADMITTED", "WITHDRAWN",
			},
		},
		"reason":  {Type: "string"},
		"actorId": {Type: "string"},
	},
	Required:             []string{"applicationId", "targetStatus"},
	AdditionalProperties: true,
}

func intPtr(v int) *int { return &v }

func validateInput(variables map[string]interface{}) error {
	result := validation.ValidateInput(variables, inputSchema)
	if !result.Valid {
		return fmt.Errorf("invalid status update input: %s", validation.FormatErrors(result))
	}
	return nil
}
