package app

// APIStatusMsg is sent when the API health probe (`GET /`) completes.
type APIStatusMsg struct {
	Message string
	Err     error
}

// HealthTickMsg triggers a periodic API health probe.
type HealthTickMsg struct{}
