// internal/workers/admission/validate-campaign-config/validation.go
package validatecampaignconfig

import (
	"fmt"

	"admission-workers/internal/common/validation"
)

// inputSchema guards shape only; the domain rules (weight sum, quota math)
// live in the scoring and allocation packages and run in Execute.
var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"campaignId": {Type: "string", MinLength: intPtr(1)},
		"totalSeats": {Type: "integer", Minimum: floatPtr(1)},
		"criteria": {
			Type: "object",
			Properties: map[string]validation.Property{
				"academicWeight":        {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
				"entranceWeight":        {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
				"interviewWeight":       {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
				"extracurricularWeight": {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
			},
			Required: []string{"academicWeight", "entranceWeight", "interviewWeight", "extracurricularWeight"},
		},
		"cutoffScore":   {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
		"waitlistLimit": {Type: "integer", Minimum: floatPtr(0)},
		"reservationQuotas": {
			Type: "array",
			Items: &validation.Property{
				Type: "object",
				Properties: map[string]validation.Property{
					"category":   {Type: "string", MinLength: intPtr(1)},
					"percentage": {Type: "number"},
				},
				Required: []string{"category", "percentage"},
			},
		},
	},
	Required:             []string{"campaignId", "totalSeats", "criteria"},
	AdditionalProperties: true,
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func validateInput(variables map[string]interface{}) error {
	result := validation.ValidateInput(variables, inputSchema)
	if !result.Valid {
		return fmt.Errorf("invalid campaign config input: %s", validation.FormatErrors(result))
	}
	return nil
}
