package server

// StartMeasurementRequest is the payload for starting a measurement job.
type StartMeasurementRequest struct {
	URL string `json:"url" example:"https://example.com"`

	// PreferBrowser overrides the server default when present.
	PreferBrowser *bool `json:"prefer_browser,omitempty" example:"true"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
