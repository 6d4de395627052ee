package dto

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Version string `json:"version,omitempty"`
	// Events describes the event stream when NATS is configured
	Events any `json:"events,omitempty"`
	// Cache is "ok" or "unavailable" when Redis is configured
	Cache string `json:"cache,omitempty"`
}
