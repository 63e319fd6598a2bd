// internal/workers/admission/generate-merit-list/validation.go
package generatemeritlist

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"campaignId", "criteria"},
	"properties": map[string]interface{}{
		"campaignId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"criteria": map[string]interface{}{
			"type": "object",
			"required": []interface{}{
				"academicWeight", "entranceWeight", "interviewWeight", "extracurricularWeight",
			},
			"properties": map[string]interface{}{
				"academicWeight":        weightSchema(),
				"entranceWeight":        weightSchema(),
				"interviewWeight":       weightSchema(),
				"extracurricularWeight": weightSchema(),
			},
		},
		"cutoffScore": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": 100,
		},
		"reservationPolicy": map[string]interface{}{
			"type": "boolean",
		},
		"adminToken": map[string]interface{}{
			"type": "string",
		},
	},
}

func weightSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":    "number",
		"minimum": 0,
		"maximum": 100,
	}
}

// validateInput checks the raw job variables against the input schema before
// anything is unmarshalled into typed structs.
func validateInput(variables map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(inputSchema)
	documentLoader := gojsonschema.NewGoLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid merit list input: %v", errs)
	}

	return nil
}
