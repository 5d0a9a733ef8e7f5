package dto

type SaveSchemeRequest struct {
	SchemeCode *int `json:"schemeCode"`
}

type SavedSchemesResponse struct {
	SavedSchemes []int `json:"savedSchemes"`
}
