package dto

import "encoding/json"

// CompareRequest keeps schemeCodes raw so a non-array value can be reported distinctly.
type CompareRequest struct {
	SchemeCodes json.RawMessage `json:"schemeCodes"`
}
